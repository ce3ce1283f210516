package service

import (
	"context"
	"errors"
	"strings"

	"simmarket/models"
)

func (s Service) SendMessage(
	ctx context.Context,
	sender models.User,
	receiverID, listingID int,
	content string,
) (models.Message, error) {
	content = strings.TrimSpace(content)
	if receiverID <= 0 || listingID <= 0 || content == "" {
		return models.Message{}, fail(models.ErrValidation, "Missing required fields")
	}

	msg, err := s.repo.CreateMessage(ctx, sender.ID, receiverID, listingID, content)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.Message{}, fail(models.ErrNotFound, "Receiver or listing not found")
		}
		return models.Message{}, err
	}
	return msg, nil
}

func (s Service) ListMessages(
	ctx context.Context,
	user models.User,
) ([]models.Message, error) {
	return s.repo.ListMessages(ctx, user.ID)
}

// MarkRead flags a message addressed to receiver as read. Messages that do not
// exist and messages addressed to someone else both report not found.
func (s Service) MarkRead(
	ctx context.Context,
	receiver models.User,
	messageID int,
) (models.Message, error) {
	msg, err := s.repo.MarkMessageRead(ctx, messageID, receiver.ID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.Message{}, fail(models.ErrNotFound, "Message not found")
		}
		return models.Message{}, err
	}
	return msg, nil
}

func (s Service) UnreadCount(
	ctx context.Context,
	user models.User,
) (int, error) {
	return s.repo.CountUnread(ctx, user.ID)
}
