package database

import (
	"context"
	"errors"
	"fmt"

	"itinerary-collab/internal/models"
	"itinerary-collab/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

const uniqueViolation = "23505"

type PostgresDB struct {
	pool *pgxpool.Pool
}

var _ Database = (*PostgresDB)(nil)

func NewPostgresDB(ctx context.Context, databaseURL string) (*PostgresDB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Connected to database successfully")
	return &PostgresDB{pool: pool}, nil
}

func (db *PostgresDB) Close() error {
	db.pool.Close()
	return nil
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}

// User Repository Implementation
func (db *PostgresDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT id, name, email, password_hash, created_at FROM users WHERE email = $1`

	user := &models.User{}
	err := db.pool.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}

	return user, nil
}

func (db *PostgresDB) CreateUser(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	query := `
		INSERT INTO users (name, email, password_hash, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, name, email, created_at`

	user := &models.User{}
	err = db.pool.QueryRow(ctx, query, req.Name, req.Email, string(hash)).Scan(
		&user.ID, &user.Name, &user.Email, &user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", translate(err))
	}

	return user, nil
}

func (db *PostgresDB) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT id, name, email, created_at FROM users WHERE id = $1`

	user := &models.User{}
	err := db.pool.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.Email, &user.CreatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}

	return user, nil
}

// Itinerary Repository Implementation
func (db *PostgresDB) GetItineraryAccess(ctx context.Context, itineraryID int) (*models.ItineraryAccess, error) {
	access := &models.ItineraryAccess{ItineraryID: itineraryID}
	err := db.pool.QueryRow(ctx,
		`SELECT user_id, COALESCE(destination, '') FROM itineraries WHERE id = $1`, itineraryID,
	).Scan(&access.OwnerID, &access.Destination)
	if err != nil {
		return nil, translate(err)
	}

	rows, err := db.pool.Query(ctx, `
		SELECT user_id FROM itinerary_collaborators
		WHERE itinerary_id = $1 AND status = $2
		ORDER BY user_id`, itineraryID, string(models.CollaboratorAccepted))
	if err != nil {
		return nil, err
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, err
	}
	access.AcceptedCollaboratorUserIDs = ids

	return access, nil
}

func (db *PostgresDB) GetParticipants(ctx context.Context, itineraryID int) ([]*models.Participant, error) {
	query := `
		SELECT DISTINCT u.id, u.name, u.email, u.profile_picture
		FROM (
			SELECT user_id FROM itineraries WHERE id = $1
			UNION
			SELECT user_id FROM itinerary_collaborators WHERE itinerary_id = $1 AND status = $2
		) p
		JOIN users u ON p.user_id = u.id
		ORDER BY u.id`

	rows, err := db.pool.Query(ctx, query, itineraryID, string(models.CollaboratorAccepted))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []*models.Participant
	for rows.Next() {
		p := &models.Participant{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.ProfilePicture); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}

	return participants, rows.Err()
}

// Chat Repository Implementation
const chatColumns = `
	cc.id, cc.itinerary_id, cc.user_id, cc.message, cc.created_at,
	u.name, u.email, u.profile_picture`

func scanChatMessage(row pgx.Row) (*models.ChatMessage, error) {
	msg := &models.ChatMessage{}
	err := row.Scan(
		&msg.ID, &msg.ItineraryID, &msg.UserID, &msg.Message, &msg.CreatedAt,
		&msg.UserName, &msg.UserEmail, &msg.UserProfilePicture,
	)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (db *PostgresDB) SaveChatMessage(ctx context.Context, itineraryID, userID int, message string) (*models.ChatMessage, error) {
	query := `
		WITH inserted AS (
			INSERT INTO collaboration_chats (itinerary_id, user_id, message, created_at)
			VALUES ($1, $2, $3, NOW())
			RETURNING id, itinerary_id, user_id, message, created_at
		)
		SELECT ` + chatColumns + `
		FROM inserted cc
		JOIN users u ON cc.user_id = u.id`

	msg, err := scanChatMessage(db.pool.QueryRow(ctx, query, itineraryID, userID, message))
	if err != nil {
		return nil, fmt.Errorf("failed to save chat message: %w", translate(err))
	}
	return msg, nil
}

// ListChatMessages returns up to limit messages, oldest first. A positive
// beforeID pages backwards from that message.
func (db *PostgresDB) ListChatMessages(ctx context.Context, itineraryID, limit, beforeID int) ([]*models.ChatMessage, error) {
	query := `
		SELECT ` + chatColumns + `
		FROM collaboration_chats cc
		JOIN users u ON cc.user_id = u.id
		WHERE cc.itinerary_id = $1 AND ($2 <= 0 OR cc.id < $2)
		ORDER BY cc.created_at DESC, cc.id DESC
		LIMIT $3`

	rows, err := db.pool.Query(ctx, query, itineraryID, beforeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*models.ChatMessage
	for rows.Next() {
		msg, err := scanChatMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to show oldest first
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// UnreadChatCounts lists the itineraries the user owns or collaborates on
// that have messages from others newer than the user's own latest message.
func (db *PostgresDB) UnreadChatCounts(ctx context.Context, userID int) ([]*models.UnreadChat, error) {
	query := `
		SELECT i.id, COALESCE(i.destination, ''), COUNT(cc.id)
		FROM itineraries i
		LEFT JOIN collaboration_chats cc ON cc.itinerary_id = i.id
			AND cc.user_id != $1
			AND cc.created_at > COALESCE(
				(SELECT MAX(created_at) FROM collaboration_chats WHERE itinerary_id = i.id AND user_id = $1),
				'1970-01-01'
			)
		WHERE i.user_id = $1 OR i.id IN (
			SELECT itinerary_id FROM itinerary_collaborators WHERE user_id = $1 AND status = $2
		)
		GROUP BY i.id, i.destination
		HAVING COUNT(cc.id) > 0
		ORDER BY i.id`

	rows, err := db.pool.Query(ctx, query, userID, string(models.CollaboratorAccepted))
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.UnreadChat, error) {
		u := &models.UnreadChat{}
		err := row.Scan(&u.ItineraryID, &u.Destination, &u.UnreadCount)
		return u, err
	})
}

func (db *PostgresDB) GetChatMessage(ctx context.Context, id int) (*models.ChatMessage, error) {
	query := `
		SELECT ` + chatColumns + `
		FROM collaboration_chats cc
		JOIN users u ON cc.user_id = u.id
		WHERE cc.id = $1`

	msg, err := scanChatMessage(db.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err)
	}
	return msg, nil
}

func (db *PostgresDB) DeleteChatMessage(ctx context.Context, id int) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM collaboration_chats WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Notification Repository Implementation
func (db *PostgresDB) CreateNotification(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (user_id, type, title, content, link, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NOW())
		RETURNING id, created_at`

	return db.pool.QueryRow(ctx, query, n.UserID, n.Type, n.Title, n.Content, n.Link).Scan(&n.ID, &n.CreatedAt)
}
