package user

import (
	"context"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/uniguide/core"
	"github.com/trezcool/uniguide/core/crud"
	"github.com/trezcool/uniguide/core/listing"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidResetToken  = errors.New("invalid or expired password reset link")
)

type Service struct {
	*crud.Service[User]
	repo     crud.Repository[User]
	validate *validator.Validate
	mailSvc  core.EmailService
	tokenGen tokenGenerator
	conf     *core.Config

	NowFunc func() time.Time // mockable
}

func NewService(repo crud.Repository[User], validate *validator.Validate, mailSvc core.EmailService, conf *core.Config, opts ...crud.Option) *Service {
	svc := &Service{
		Service:  crud.NewService(Schema(), repo, validate, opts...),
		repo:     repo,
		validate: validate,
		mailSvc:  mailSvc,
		conf:     conf,
		NowFunc:  time.Now,
	}
	svc.tokenGen = tokenGenerator{
		secretKey: []byte(conf.SecretKey),
		timeout:   conf.PasswordResetTimeoutDelta,
		nowFunc:   func() time.Time { return svc.NowFunc() },
	}
	return svc
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	email = core.CleanString(email, true /* lower */)
	if email == "" {
		return User{}, ErrNotFound
	}
	usrs, err := svc.repo.All(ctx)
	if err != nil {
		return User{}, errors.Wrap(err, "querying users")
	}
	found := listing.Filter(usrs, listing.FieldEquals[User]("email", email))
	if len(found) == 0 {
		return User{}, ErrNotFound
	}
	return found[0], nil
}

// Authenticate checks the credentials of an active user and records the login.
func (svc *Service) Authenticate(ctx context.Context, login Login) (User, error) {
	login.Clean()
	usr, err := svc.GetByEmail(ctx, login.Email)
	if err != nil {
		if err == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if !usr.IsActive || usr.CheckPassword(login.Password) != nil {
		return User{}, ErrInvalidCredentials
	}

	now := svc.NowFunc().UTC()
	usr.LastLogin = &now
	return svc.repo.Save(ctx, usr)
}

// SetPassword changes the password of the user with the given email, applying the password policy.
func (svc *Service) SetPassword(ctx context.Context, email, pwd, confirmPwd string) (User, error) {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	if err := svc.validate.Struct(SetUserPassword{Password: pwd, ConfirmPassword: confirmPwd}); err != nil {
		return User{}, err
	}
	return svc.savePassword(ctx, usr, pwd)
}

func (svc *Service) savePassword(ctx context.Context, usr User, pwd string) (User, error) {
	if err := usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	usr.UpdatedAt = svc.NowFunc().UTC()
	usr.AuditInfo.UpdatedBy = crud.ActorFrom(ctx)
	return svc.repo.Save(ctx, usr)
}

// RequestPasswordReset mails a reset link to the active user with the given email.
// Unknown emails are ignored so that callers cannot probe accounts.
func (svc *Service) RequestPasswordReset(ctx context.Context, data RequestPasswordReset) error {
	data.Email = core.CleanString(data.Email, true /* lower */)
	if err := svc.validate.Struct(data); err != nil {
		return err
	}
	usr, err := svc.GetByEmail(ctx, data.Email)
	if err != nil {
		if err == ErrNotFound {
			return nil
		}
		return err
	}
	if usr.IsActive {
		svc.sendPasswordResetMail(usr)
	}
	return nil
}

func (svc *Service) sendPasswordResetMail(usr User) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:              []mail.Address{{Name: usr.Name(), Address: usr.Email}},
		Subject:         "Password Reset",
		TemplateName:    "password_reset",
		FrontendBaseURL: svc.conf.FrontendBaseURL,
		TemplateData: map[string]interface{}{
			"Name":  usr.Name(),
			"UID":   EncodeUID(usr),
			"Token": svc.tokenGen.makeToken(usr),
		},
	})
}

func (svc *Service) ResetPassword(ctx context.Context, data ResetUserPassword) (User, error) {
	if err := svc.validate.Struct(data); err != nil {
		return User{}, err
	}
	id, err := decodeUID(data.UID)
	if err != nil {
		return User{}, ErrInvalidResetToken
	}
	usr, err := svc.repo.Get(ctx, id)
	if err != nil {
		if errors.Cause(err) == crud.ErrNotFound {
			return User{}, ErrInvalidResetToken
		}
		return User{}, err
	}
	if err := svc.tokenGen.verifyToken(usr, data.Token); err != nil {
		return User{}, ErrInvalidResetToken
	}
	return svc.savePassword(ctx, usr, data.Password)
}

// WelcomeMessage builds the email sent to a newly created account.
func (svc *Service) WelcomeMessage(usr User, tmpl string) *core.EmailMessage {
	return &core.EmailMessage{
		To:              []mail.Address{{Name: usr.Name(), Address: usr.Email}},
		Subject:         "Welcome to " + svc.conf.AppName,
		TemplateName:    tmpl,
		FrontendBaseURL: svc.conf.FrontendBaseURL,
		TemplateData: map[string]interface{}{
			"Name":  usr.Name(),
			"Email": usr.Email,
			"Role":  usr.Role(),
		},
	}
}

// Mail sends messages through the email service of svc.
func (svc *Service) Mail(messages ...*core.EmailMessage) {
	svc.mailSvc.SendMessages(messages...)
}
