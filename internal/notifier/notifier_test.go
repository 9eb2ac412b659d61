package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PriceLineup/internal/model"
)

func newTestNotifier(t *testing.T, handler http.HandlerFunc) *TelegramNotifier {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	tn := NewTelegramNotifier("TOKEN", "42", "")
	tn.APIBase = srv.URL
	return tn
}

func TestSend(t *testing.T) {
	var got map[string]string
	tn := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok":true}`))
	})

	require.NoError(t, tn.Send("hello"))
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "hello", got["text"])
	assert.Equal(t, "HTML", got["parse_mode"])
}

func TestSend_Error(t *testing.T) {
	tn := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	})
	err := tn.Send("hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestSendWithRetry_Cancelled(t *testing.T) {
	tn := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, tn.SendWithRetry(ctx, "hello", 3), context.Canceled)
}

func TestStartPolling(t *testing.T) {
	replies := make(chan string, 4)
	tn := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			if r.URL.Query().Get("offset") == "0" {
				w.Write([]byte(`{"ok":true,"result":[
					{"update_id":7,"message":{"text":"/runs","chat":{"id":99}}},
					{"update_id":8,"message":{"text":" /runs ","chat":{"id":42}}}
				]}`))
				return
			}
			time.Sleep(20 * time.Millisecond)
			w.Write([]byte(`{"ok":true,"result":[]}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			replies <- body["text"]
			w.Write([]byte(`{"ok":true}`))
		}
	})

	var commands []string
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		tn.StartPolling(ctx, func(cmd string) string {
			commands = append(commands, cmd)
			return "reply to " + cmd
		})
		close(done)
	}()

	select {
	case reply := <-replies:
		assert.Equal(t, "reply to /runs", reply)
	case <-time.After(5 * time.Second):
		t.Fatal("no reply sent")
	}
	cancel()
	<-done
	assert.Equal(t, []string{"/runs"}, commands, "other chats ignored")
}

func TestFormatSweepReport(t *testing.T) {
	start := time.Date(2025, 6, 30, 8, 0, 0, 0, time.UTC)
	sum := &model.RunSummary{
		StartedAt:  start,
		FinishedAt: start.Add(90 * time.Second),
		Categories: []model.CategorySummary{
			{Category: "bonds", Saved: 1, Skipped: 1},
			{Category: "crypto", Saved: 2, Failed: 1},
		},
		Saved: 3, Skipped: 1, Failed: 1, Records: 4200,
	}
	report := FormatSweepReport(sum)
	assert.Contains(t, report, "2025-06-30 08:00")
	assert.Contains(t, report, "Saved: 3 (4200 records)")
	assert.Contains(t, report, "bonds: 1/2 saved")
	assert.Contains(t, report, "crypto: 2/3 saved, 1 failed")
	assert.Contains(t, report, "Duration: 1m30s")
	assert.True(t, strings.HasPrefix(report, "⚠️"))

	sum.Aborted = true
	assert.Contains(t, FormatSweepReport(sum), "interrupted")
}

func TestFormatRunHistory(t *testing.T) {
	assert.Equal(t, "No sweeps recorded yet.", FormatRunHistory(nil))

	out := FormatRunHistory([]model.RunSummary{
		{Mode: "cron", StartedAt: time.Date(2025, 7, 1, 6, 0, 0, 0, time.UTC), Saved: 10, Aborted: true},
	})
	assert.Contains(t, out, "2025-07-01 06:00 [cron] saved 10, skipped 0, failed 0 (aborted)")
}
