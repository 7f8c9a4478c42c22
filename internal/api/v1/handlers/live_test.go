package handlers

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"s2t/internal/api/v1/dto"
	"s2t/internal/app/audio/listener"
	"s2t/internal/app/converter"
	"s2t/internal/app/testutil"
)

type liveRig struct {
	server   *httptest.Server
	live     *converter.LiveTranscriber
	mic      *testutil.FakeSource
	listener *testutil.ScriptedListener
}

func newLiveRig(t *testing.T, rec *testutil.MockRecognizer, outcomes ...testutil.ListenOutcome) *liveRig {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rig := &liveRig{
		mic:      testutil.NewFakeSource(),
		listener: testutil.NewScriptedListener(outcomes...),
	}
	rig.live = converter.NewLiveTranscriber(rec,
		func(ctx context.Context) (listener.Source, error) { return rig.mic, nil },
		func() converter.UtteranceListener { return rig.listener },
		converter.LiveOptions{}, nil, nil)

	router := gin.New()
	router.GET("/api/v1/live", NewLiveHandler(rig.live, nil).Serve)
	rig.server = httptest.NewServer(router)
	t.Cleanup(rig.server.Close)
	return rig
}

func (r *liveRig) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(r.server.URL, "http") + "/api/v1/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil collects frames up to and including the first frame of the given type
func readUntil(t *testing.T, conn *websocket.Conn, frameType string) []dto.LiveMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var frames []dto.LiveMessage
	for {
		var msg dto.LiveMessage
		require.NoError(t, conn.ReadJSON(&msg))
		frames = append(frames, msg)
		if msg.Type == frameType {
			return frames
		}
	}
}

func framesOfType(frames []dto.LiveMessage, frameType string) []string {
	var out []string
	for _, f := range frames {
		if f.Type == frameType {
			out = append(out, f.Message)
		}
	}
	return out
}

func TestLiveSessionOverWebsocket(t *testing.T) {
	rec := testutil.NewMockRecognizer(testutil.Say("Hello there"), testutil.Say("Stop."))
	rig := newLiveRig(t, rec, testutil.Utterance(time.Second), testutil.Utterance(time.Second))
	conn := rig.dial(t)

	frames := readUntil(t, conn, dto.LiveTypeResult)

	assert.Equal(t, []string{"Listening... (say 'stop' to end)"}, framesOfType(frames, dto.LiveTypeInfo))
	assert.Equal(t, []string{"You said: hello there"}, framesOfType(frames, dto.LiveTypeSaid))
	states := framesOfType(frames, dto.LiveTypeState)
	assert.Equal(t, string(converter.StateIdle), states[0])
	assert.Equal(t, string(converter.StateStopped), states[len(states)-1])

	result := frames[len(frames)-1]
	assert.Equal(t, "Listening stopped.", result.Message)
	assert.Empty(t, result.Kind)

	// the server closes the socket after the result
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "unexpected error: %v", err)
	assert.True(t, rig.mic.Closed())
}

func TestLiveCancelFrame(t *testing.T) {
	rig := newLiveRig(t, testutil.NewMockRecognizer())
	conn := rig.dial(t)

	readUntil(t, conn, dto.LiveTypeInfo)
	require.Eventually(t, func() bool { return rig.listener.ListenCount() > 0 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, conn.WriteJSON(dto.LiveMessage{Type: dto.LiveTypeCancel}))

	frames := readUntil(t, conn, dto.LiveTypeResult)
	assert.Equal(t, "Listening cancelled.", frames[len(frames)-1].Message)
	assert.Eventually(t, func() bool { return !rig.live.Busy() }, 2*time.Second, 5*time.Millisecond)
	assert.True(t, rig.mic.Closed())
}

func TestLiveDisconnectEndsSession(t *testing.T) {
	rig := newLiveRig(t, testutil.NewMockRecognizer())
	conn := rig.dial(t)

	readUntil(t, conn, dto.LiveTypeInfo)
	require.Eventually(t, rig.live.Busy, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool { return !rig.live.Busy() }, 2*time.Second, 5*time.Millisecond)
	assert.True(t, rig.mic.Closed())
}

func TestLiveSecondSessionIsRejected(t *testing.T) {
	rig := newLiveRig(t, testutil.NewMockRecognizer())

	first := rig.dial(t)
	readUntil(t, first, dto.LiveTypeInfo)
	require.Eventually(t, rig.live.Busy, 2*time.Second, 5*time.Millisecond)

	second := rig.dial(t)
	frames := readUntil(t, second, dto.LiveTypeResult)
	require.Len(t, frames, 1)
	assert.Equal(t, "operation_failed", frames[0].Kind)
	assert.Equal(t, "An error occurred: microphone is already in use", frames[0].Message)

	require.NoError(t, first.WriteJSON(dto.LiveMessage{Type: dto.LiveTypeCancel}))
	readUntil(t, first, dto.LiveTypeResult)
}
