package notifications

import (
	"context"
	"fmt"
	"log/slog"

	"ponto/internal/domain/reports"
)

type Service struct {
	store StoreAPI
}

func New(store StoreAPI) *Service {
	return &Service{store: store}
}

// IncompleteDay tells the employee their punches for day never reached an
// exit. Repeated scans of the same date do not notify twice.
func (s *Service) IncompleteDay(ctx context.Context, day reports.IncompleteDay) error {
	title := fmt.Sprintf("Punches for %s are incomplete", day.Date)
	body := fmt.Sprintf("Your last punch on %s was at %s and the day stopped at %q. Ask an administrator to correct the record.",
		day.Date, day.LastPunch.Format("15:04"), day.State)
	created, err := s.store.CreateNotification(ctx, day.EmployeeID, TypeIncompleteDay, day.Date, title, body)
	if err != nil {
		return err
	}
	if created {
		slog.Info("incomplete day notification created", "employeeId", day.EmployeeID, "date", day.Date)
	}
	return nil
}

func (s *Service) List(ctx context.Context, employeeID string, unreadOnly bool, limit, offset int) ([]Notification, int, error) {
	total, err := s.store.CountNotifications(ctx, employeeID, unreadOnly)
	if err != nil {
		return nil, 0, err
	}
	items, err := s.store.ListNotifications(ctx, employeeID, unreadOnly, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *Service) MarkRead(ctx context.Context, employeeID, notificationID string) (bool, error) {
	return s.store.MarkRead(ctx, employeeID, notificationID)
}
