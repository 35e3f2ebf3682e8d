package ws

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xiaot623/gogo/companion/internal/config"
	"github.com/xiaot623/gogo/companion/internal/delay"
	"github.com/xiaot623/gogo/companion/internal/domain"
	"github.com/xiaot623/gogo/companion/internal/logger"
	"github.com/xiaot623/gogo/companion/internal/progress"
	"github.com/xiaot623/gogo/companion/internal/service"
	"github.com/xiaot623/gogo/companion/internal/therapist"
	"github.com/xiaot623/gogo/companion/tests/helpers"
)

func newTestFeed(t *testing.T) (*service.Service, *websocket.Conn) {
	t.Helper()
	log := zaptest.NewLogger(t)

	hub := NewHub(log)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	cfg, err := therapist.ConfigFor(domain.PersonalitySupportive)
	require.NoError(t, err)
	te, err := therapist.NewEngine(cfg, rand.New(rand.NewPCG(3, 4)))
	require.NoError(t, err)
	svc := service.New(te, progress.NewEngine(), delay.NewSimulator(delay.WithSleeper(delay.NoSleep)),
		helpers.NewTestRepository(t), logger.Wrap(log), service.WithNotifier(hub))

	wsCfg := config.WSConfig{PingInterval: time.Minute, ReadTimeout: time.Minute, WriteTimeout: time.Second, MaxMessageSize: 4096}
	e := echo.New()
	e.GET("/v1/ws", NewServer(wsCfg, hub, svc, log).HandleWebSocket)
	server := httptest.NewServer(e)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// A pong proves the connection is registered with the hub.
	require.NoError(t, conn.WriteJSON(map[string]string{"type": TypePing}))
	assert.Equal(t, TypePong, readFrame(t, conn)["type"])
	return svc, conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var frame map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &frame))
	return frame
}

func TestFeedErrors(t *testing.T) {
	_, conn := newTestFeed(t)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	frame := readFrame(t, conn)
	assert.Equal(t, TypeError, frame["type"])
	assert.Equal(t, ErrorCodeInvalidMessage, frame["code"])

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "dance"}))
	assert.Equal(t, ErrorCodeInvalidMessage, readFrame(t, conn)["code"])

	require.NoError(t, conn.WriteJSON(map[string]string{"type": TypeUserMessage, "text": "hello"}))
	assert.Equal(t, ErrorCodeSessionNotActive, readFrame(t, conn)["code"])

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": TypeMood, "mood": "positive", "emotions": []string{"boredom"}}))
	assert.Equal(t, ErrorCodeInvalidInput, readFrame(t, conn)["code"])
}

func TestFeedTurn(t *testing.T) {
	svc, conn := newTestFeed(t)

	id, err := svc.StartSession(context.Background())
	require.NoError(t, err)
	started := readFrame(t, conn)
	assert.Equal(t, "session_started", started["type"])
	assert.Equal(t, id, started["session_id"])
	assert.NotZero(t, started["ts"])

	require.NoError(t, conn.WriteJSON(map[string]string{"type": TypeUserMessage, "text": "My family has been stressful"}))
	typing := readFrame(t, conn)
	assert.Equal(t, "typing", typing["type"])
	assert.Contains(t, typing, "delay_ms")

	frame := readFrame(t, conn)
	require.Equal(t, "turn", frame["type"])
	turn := frame["turn"].(map[string]interface{})
	assert.Equal(t, "anxious", turn["emotion"])
	assert.Equal(t, []interface{}{"relationships"}, turn["topics"])

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": TypeMood, "mood": "neutral", "intensity": 4}))
	mood := readFrame(t, conn)
	assert.Equal(t, "mood_tracked", mood["type"])
	assert.Len(t, svc.CurrentSession().MoodEntries, 1)
}

func TestEncodeEventFlattensData(t *testing.T) {
	data, err := encodeEvent(service.Event{Type: service.EventTyping, Ts: 42, Data: map[string]interface{}{"delay_ms": 900}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"typing","ts":42,"delay_ms":900}`, string(data))
}
