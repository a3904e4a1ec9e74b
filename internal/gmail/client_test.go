package gmail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

type fakeMailbox struct {
	messages map[string]*gmail.Message
	order    []string

	lastQuery      string
	lastMaxResults string
	gets           atomic.Int32
}

func (f *fakeMailbox) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const prefix = "/gmail/v1/users/me/messages"
	switch {
	case r.URL.Path == prefix:
		f.lastQuery = r.URL.Query().Get("q")
		f.lastMaxResults = r.URL.Query().Get("maxResults")
		refs := make([]map[string]string, 0, len(f.order))
		for _, id := range f.order {
			refs = append(refs, map[string]string{"id": id, "threadId": "t-" + id})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"messages": refs})
	case strings.HasPrefix(r.URL.Path, prefix+"/"):
		f.gets.Add(1)
		id := strings.TrimPrefix(r.URL.Path, prefix+"/")
		m, ok := f.messages[id]
		if !ok {
			http.Error(w, `{"error":{"code":404,"message":"not found"}}`, http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(m)
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	svc, err := gmail.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return NewClientWithService(svc, "default")
}

func metadataMessage(id, subject string, internalDate int64) *gmail.Message {
	headers := []*gmail.MessagePartHeader{
		{Name: "From", Value: "Ayşe <ayse@example.com>"},
		{Name: "Date", Value: "Mon, 10 Mar 2025 09:00:00 +0300"},
	}
	if subject != "" {
		headers = append(headers, &gmail.MessagePartHeader{Name: "Subject", Value: subject})
	}
	return &gmail.Message{
		Id:           id,
		ThreadId:     "t-" + id,
		Snippet:      "  snippet of " + id + " ",
		InternalDate: internalDate,
		Payload:      &gmail.MessagePart{Headers: headers},
	}
}

func TestListRecentImportant(t *testing.T) {
	box := &fakeMailbox{
		order: []string{"a", "b", "c"},
		messages: map[string]*gmail.Message{
			"a": metadataMessage("a", "Fatura", 1741590000000),
			"b": metadataMessage("b", "", 1741600000000),
			"c": metadataMessage("c", "Toplantı", 1741580000000),
		},
	}
	client := newTestClient(t, box)

	msgs, err := client.ListRecentImportant(context.Background(), 7, 10)
	require.NoError(t, err)

	assert.Equal(t, "newer_than:7d -category:promotions -category:social", box.lastQuery)
	assert.Equal(t, "30", box.lastMaxResults)

	require.Len(t, msgs, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{msgs[0].ID, msgs[1].ID, msgs[2].ID}, "newest first")

	assert.Equal(t, NoSubject, msgs[0].Subject)
	assert.Equal(t, "Fatura", msgs[1].Subject)
	assert.Equal(t, "t-a", msgs[1].ThreadID)
	assert.Equal(t, "Ayşe <ayse@example.com>", msgs[1].From)
	assert.Equal(t, "Mon, 10 Mar 2025 09:00:00 +0300", msgs[1].Date)
	assert.Equal(t, "snippet of a", msgs[1].Snippet)
	assert.Equal(t, "2025-03-10T07:00:00Z", msgs[1].Received)
	assert.Equal(t, int64(1741590000000), msgs[1].InternalTS)
}

func TestListRecentImportant_Limit(t *testing.T) {
	box := &fakeMailbox{
		order: []string{"a", "b", "c", "d"},
		messages: map[string]*gmail.Message{
			"a": metadataMessage("a", "1", 1),
			"b": metadataMessage("b", "2", 4),
			"c": metadataMessage("c", "3", 3),
			"d": metadataMessage("d", "4", 2),
		},
	}
	client := newTestClient(t, box)

	msgs, err := client.ListRecentImportant(context.Background(), 3, 2)
	require.NoError(t, err)

	assert.Equal(t, "6", box.lastMaxResults)
	assert.Equal(t, int32(2), box.gets.Load(), "only the first limit messages are fetched")
	require.Len(t, msgs, 2)
	assert.Equal(t, "b", msgs[0].ID)
	assert.Equal(t, "a", msgs[1].ID)
}

func TestListRecentImportant_PageCap(t *testing.T) {
	box := &fakeMailbox{messages: map[string]*gmail.Message{}}
	client := newTestClient(t, box)

	msgs, err := client.ListRecentImportant(context.Background(), 7, 40)
	require.NoError(t, err)
	assert.Empty(t, msgs)
	assert.Equal(t, "50", box.lastMaxResults)
}

func TestListRecentImportant_FetchError(t *testing.T) {
	box := &fakeMailbox{
		order:    []string{"a", "missing"},
		messages: map[string]*gmail.Message{"a": metadataMessage("a", "x", 1)},
	}
	client := newTestClient(t, box)

	_, err := client.ListRecentImportant(context.Background(), 7, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get message missing")
}

func TestListRecentImportant_ZeroLimit(t *testing.T) {
	client := newTestClient(t, http.NotFoundHandler())

	msgs, err := client.ListRecentImportant(context.Background(), 7, 0)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestHeaderValue(t *testing.T) {
	msg := &gmail.Message{
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "From", Value: "sender@example.com"},
				{Name: "subject", Value: "lower-case header"},
			},
		},
	}

	assert.Equal(t, "sender@example.com", HeaderValue(msg, "From"))
	assert.Equal(t, "lower-case header", HeaderValue(msg, "Subject"))
	assert.Equal(t, "", HeaderValue(msg, "Cc"))
	assert.Equal(t, "", HeaderValue(&gmail.Message{}, "From"))
	assert.Equal(t, "", HeaderValue(nil, "From"))
}

func TestMessage_JSON(t *testing.T) {
	data, err := json.Marshal(Message{ID: "a", ThreadID: "t", InternalTS: 5})
	require.NoError(t, err)
	for _, key := range []string{`"threadId":"t"`, `"internal_ts":5`, `"received":""`} {
		assert.Contains(t, string(data), key)
	}
}
