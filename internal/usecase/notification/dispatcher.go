package notification

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"medquote-backend/internal/domain/account"
	domain "medquote-backend/internal/domain/notification"
	applog "medquote-backend/internal/infrastructure/logger"
	"medquote-backend/internal/infrastructure/metrics"
	"medquote-backend/pkg/id"
)

// Mailer delivers the email channel.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer writes emails to the log instead of sending them.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, to, subject, _ string) error {
	applog.Ctx(ctx).Info("email queued", zap.String("to", to), zap.String("subject", subject))
	return nil
}

var _ domain.Notifier = (*Dispatcher)(nil)

type Dispatcher struct {
	users  account.UserRepository
	notes  domain.Repository
	mailer Mailer
}

func NewDispatcher(users account.UserRepository, notes domain.Repository, mailer Mailer) *Dispatcher {
	if mailer == nil {
		mailer = LogMailer{}
	}
	return &Dispatcher{users: users, notes: notes, mailer: mailer}
}

// Notify persists in-app rows and emails every recipient. Failures are logged
// and swallowed; the caller's state change has already committed.
func (d *Dispatcher) Notify(ctx context.Context, msgs ...domain.Message) {
	log := applog.Ctx(ctx)
	for _, m := range msgs {
		recipients, err := d.recipients(ctx, m)
		if err != nil {
			metrics.NotificationFailures.Inc()
			log.Warn("notify: resolve recipients", zap.String("type", string(m.Type)), zap.Error(err))
			continue
		}
		if len(recipients) == 0 {
			continue
		}

		rows := make([]domain.Notification, 0, len(recipients))
		for _, u := range recipients {
			rows = append(rows, domain.Notification{
				ID:          id.NewID32(),
				UserID:      u.ID,
				Type:        m.Type,
				Title:       m.Title,
				Message:     m.Body,
				RFQID:       m.RFQID,
				QuotationID: m.QuotationID,
				Metadata:    datatypes.JSONMap(m.Metadata),
			})
		}
		if err := d.notes.CreateBatch(ctx, rows); err != nil {
			metrics.NotificationFailures.Inc()
			log.Warn("notify: persist", zap.String("type", string(m.Type)), zap.Error(err))
		}

		for _, u := range recipients {
			if u.Email == "" {
				continue
			}
			if err := d.mailer.Send(ctx, u.Email, m.Title, m.Body); err != nil {
				log.Warn("notify: email", zap.String("user_id", u.ID), zap.Error(err))
			}
		}
	}
}

func (d *Dispatcher) recipients(ctx context.Context, m domain.Message) ([]account.User, error) {
	seen := map[string]bool{}
	var out []account.User
	add := func(us []account.User) {
		for _, u := range us {
			if !seen[u.ID] && u.IsActive {
				seen[u.ID] = true
				out = append(out, u)
			}
		}
	}

	if m.HospitalID != "" {
		us, err := d.users.ListByHospitalID(ctx, m.HospitalID)
		if err != nil {
			return nil, err
		}
		add(us)
	}
	if m.SupplierID != "" {
		us, err := d.users.ListBySupplierID(ctx, m.SupplierID)
		if err != nil {
			return nil, err
		}
		add(us)
	}
	for _, uid := range m.UserIDs {
		if seen[uid] {
			continue
		}
		u, err := d.users.GetByID(ctx, uid)
		if err != nil {
			return nil, err
		}
		add([]account.User{*u})
	}
	return out, nil
}
