package prompt

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/velobro/event_bot/internal/session"
)

type stubClient struct {
	nextID  int
	sent    []string
	edited  []string
	deleted []int
	editErr error
}

func (c *stubClient) SendMessage(ctx context.Context, p *bot.SendMessageParams) (*models.Message, error) {
	c.nextID++
	c.sent = append(c.sent, p.Text)
	return &models.Message{ID: c.nextID}, nil
}
func (c *stubClient) SendPhoto(ctx context.Context, p *bot.SendPhotoParams) (*models.Message, error) {
	c.nextID++
	return &models.Message{ID: c.nextID}, nil
}
func (c *stubClient) SendMediaGroup(ctx context.Context, p *bot.SendMediaGroupParams) ([]*models.Message, error) {
	return nil, nil
}
func (c *stubClient) EditMessageText(ctx context.Context, p *bot.EditMessageTextParams) (*models.Message, error) {
	if c.editErr != nil {
		return nil, c.editErr
	}
	c.edited = append(c.edited, p.Text)
	return &models.Message{ID: p.MessageID}, nil
}
func (c *stubClient) EditMessageCaption(ctx context.Context, p *bot.EditMessageCaptionParams) (*models.Message, error) {
	return &models.Message{ID: p.MessageID}, nil
}
func (c *stubClient) EditMessageReplyMarkup(ctx context.Context, p *bot.EditMessageReplyMarkupParams) (*models.Message, error) {
	return &models.Message{ID: p.MessageID}, nil
}
func (c *stubClient) DeleteMessage(ctx context.Context, p *bot.DeleteMessageParams) (bool, error) {
	c.deleted = append(c.deleted, p.MessageID)
	return true, nil
}
func (c *stubClient) AnswerCallbackQuery(ctx context.Context, p *bot.AnswerCallbackQueryParams) (bool, error) {
	return true, nil
}

type stubRecorder struct {
	tracked []int
}

func (r *stubRecorder) Track(ctx context.Context, chatID int64, messageID int, sentAt time.Time) error {
	r.tracked = append(r.tracked, messageID)
	return nil
}

func TestRenderReplacesPrompt(t *testing.T) {
	client := &stubClient{}
	rec := &stubRecorder{}
	m := NewManager(client, rec, zap.NewNop())
	s := &session.Session{}
	ctx := context.Background()

	m.Render(ctx, s, 5, "шаг 1", nil)
	require.NotNil(t, s.Prompt)
	first := s.Prompt.MessageID

	m.TrackAux(ctx, s, session.Ref{ChatID: 5, MessageID: 77})
	m.Render(ctx, s, 5, "шаг 2", nil)

	// Старая подсказка и aux-сообщения удалены, новая записана в журнал
	assert.ElementsMatch(t, []int{first, 77}, client.deleted)
	assert.Equal(t, []string{"шаг 1", "шаг 2"}, client.sent)
	assert.NotEqual(t, first, s.Prompt.MessageID)
	assert.Nil(t, s.Aux)
	assert.Contains(t, rec.tracked, s.Prompt.MessageID)
	assert.Contains(t, rec.tracked, 77)
}

func TestUpdateEditsInPlace(t *testing.T) {
	client := &stubClient{}
	m := NewManager(client, nil, zap.NewNop())
	s := &session.Session{}
	ctx := context.Background()

	m.Render(ctx, s, 5, "шаг 1", nil)
	id := s.Prompt.MessageID

	m.Update(ctx, s, 5, "шаг 1: ошибка", nil)
	assert.Equal(t, []string{"шаг 1: ошибка"}, client.edited)
	assert.Equal(t, id, s.Prompt.MessageID)
	assert.Len(t, client.sent, 1)
}

func TestUpdateFallsBackToRender(t *testing.T) {
	client := &stubClient{editErr: errors.New("message to edit not found")}
	m := NewManager(client, nil, zap.NewNop())
	s := &session.Session{Prompt: &session.Ref{ChatID: 5, MessageID: 9}}
	ctx := context.Background()

	m.Update(ctx, s, 5, "шаг 2", nil)
	assert.Equal(t, []string{"шаг 2"}, client.sent)
	assert.NotEqual(t, 9, s.Prompt.MessageID)
	assert.Contains(t, client.deleted, 9)
}

func TestUpdateWithoutPromptSends(t *testing.T) {
	client := &stubClient{}
	m := NewManager(client, nil, zap.NewNop())
	s := &session.Session{}

	m.Update(context.Background(), s, 5, "шаг 1", nil)
	require.NotNil(t, s.Prompt)
	assert.Equal(t, []string{"шаг 1"}, client.sent)
}

func TestRemoveClearsEverything(t *testing.T) {
	client := &stubClient{}
	m := NewManager(client, nil, zap.NewNop())
	s := &session.Session{
		Prompt: &session.Ref{ChatID: 5, MessageID: 3},
		Aux:    []session.Ref{{ChatID: 5, MessageID: 4}},
	}

	m.Remove(context.Background(), s)
	assert.ElementsMatch(t, []int{3, 4}, client.deleted)
	assert.Nil(t, s.Prompt)
	assert.Nil(t, s.Aux)
}
