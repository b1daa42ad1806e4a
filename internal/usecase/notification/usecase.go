package notification

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"medquote-backend/internal/domain/errs"
	domain "medquote-backend/internal/domain/notification"
	"medquote-backend/internal/usecase/access"
)

type Usecase struct {
	guard *access.Guard
	notes domain.Repository
}

func NewUsecase(guard *access.Guard, notes domain.Repository) *Usecase {
	return &Usecase{guard: guard, notes: notes}
}

func (u *Usecase) List(ctx context.Context, identity string, unreadOnly bool) ([]domain.Notification, error) {
	user, err := u.guard.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	return u.notes.ListByUser(ctx, user.ID, unreadOnly)
}

func (u *Usecase) MarkRead(ctx context.Context, identity, notificationID string) error {
	user, err := u.guard.Resolve(ctx, identity)
	if err != nil {
		return err
	}
	n, err := u.notes.GetByID(ctx, notificationID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}
	if n.UserID != user.ID {
		return errs.ErrForbidden
	}
	if n.IsRead {
		return nil
	}
	return u.notes.MarkRead(ctx, n.ID)
}

func (u *Usecase) MarkAllRead(ctx context.Context, identity string) (int64, error) {
	user, err := u.guard.Resolve(ctx, identity)
	if err != nil {
		return 0, err
	}
	return u.notes.MarkAllRead(ctx, user.ID)
}
