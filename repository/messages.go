package repository

import (
	"context"

	"simmarket/models"
)

const (
	insertMessageQuery = "INSERT INTO messages (sender_id, receiver_id, listing_id, content) " +
		"VALUES ($1, $2, $3, $4) RETURNING id, read, created_at"
	selectMessagesQuery = `SELECT m.id, m.sender_id, m.receiver_id, m.listing_id, m.content, m.read, m.created_at,
		s.name, r.name, l.title
		FROM messages m
		JOIN users s ON s.id = m.sender_id
		JOIN users r ON r.id = m.receiver_id
		JOIN listings l ON l.id = m.listing_id
		WHERE m.sender_id = $1 OR m.receiver_id = $1
		ORDER BY m.created_at DESC, m.id DESC`
	markReadQuery = "UPDATE messages SET read = TRUE WHERE id = $1 AND receiver_id = $2 " +
		"RETURNING id, sender_id, receiver_id, listing_id, content, read, created_at"
	countUnreadQuery = "SELECT COUNT(*) FROM messages WHERE receiver_id = $1 AND read = FALSE"
)

func (r PostgresRepository) CreateMessage(
	ctx context.Context,
	senderID, receiverID, listingID int,
	content string,
) (models.Message, error) {
	m := models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		ListingID:  listingID,
		Content:    content,
	}
	err := r.db.QueryRowContext(
		ctx,
		insertMessageQuery,
		senderID, receiverID, listingID, content,
	).Scan(&m.ID, &m.Read, &m.CreatedAt)
	if err != nil {
		return models.Message{}, translate(err, "create message")
	}
	return m, nil
}

func (r PostgresRepository) ListMessages(
	ctx context.Context,
	userID int,
) ([]models.Message, error) {
	rows, err := r.db.QueryContext(ctx, selectMessagesQuery, userID)
	if err != nil {
		return nil, translate(err, "list messages")
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(
			&m.ID,
			&m.SenderID,
			&m.ReceiverID,
			&m.ListingID,
			&m.Content,
			&m.Read,
			&m.CreatedAt,
			&m.SenderName,
			&m.ReceiverName,
			&m.ListingTitle,
		); err != nil {
			return nil, translate(err, "scan message")
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "list messages")
	}
	return messages, nil
}

// MarkMessageRead flags the message as read when receiverID owns it. Any other
// caller gets models.ErrNotFound.
func (r PostgresRepository) MarkMessageRead(
	ctx context.Context,
	messageID, receiverID int,
) (models.Message, error) {
	var m models.Message
	err := r.db.QueryRowContext(ctx, markReadQuery, messageID, receiverID).Scan(
		&m.ID,
		&m.SenderID,
		&m.ReceiverID,
		&m.ListingID,
		&m.Content,
		&m.Read,
		&m.CreatedAt,
	)
	if err != nil {
		return models.Message{}, translate(err, "mark message read")
	}
	return m, nil
}

func (r PostgresRepository) CountUnread(
	ctx context.Context,
	userID int,
) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countUnreadQuery, userID).Scan(&n); err != nil {
		return 0, translate(err, "count unread")
	}
	return n, nil
}
