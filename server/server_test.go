package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/shellmonger/mynotes/internal/config"
	"github.com/shellmonger/mynotes/notes"
	"github.com/shellmonger/mynotes/notes/httpquery"
	"github.com/shellmonger/mynotes/notes/queryfake"
	"github.com/shellmonger/mynotes/server"
)

func newTestServer(t *testing.T, store *queryfake.FakeQueryClient) *httptest.Server {
	t.Helper()
	srv, err := server.New(config.New(), store)
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

func signTestToken(t *testing.T) string {
	t.Helper()
	claims := jwtlib.MapClaims{
		"iss": "com.shellmonger.mynotes",
		"sub": "test-user",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).
		SignedString([]byte(config.New().GetTokenSecret()))
	require.NoError(t, err)
	return token
}

func newTestClient(t *testing.T, ts *httptest.Server) *httpquery.Client {
	t.Helper()
	token := signTestToken(t)
	return httpquery.New(ts.URL, func() string { return token })
}

func TestServerRequiresQueryClient(t *testing.T) {
	_, err := server.New(config.New(), nil)
	require.Error(t, err)
}

func TestHealthEndpointNeedsNoToken(t *testing.T) {
	ts := newTestServer(t, queryfake.NewSeeded())

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPIRejectsMissingToken(t *testing.T) {
	ts := newTestServer(t, queryfake.NewSeeded())

	resp, err := http.Get(ts.URL + "/api/notes")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPIRejectsBadToken(t *testing.T) {
	ts := newTestServer(t, queryfake.NewSeeded())

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/notes", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer not-a-token")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestListNotesPagesThroughWholeCollection(t *testing.T) {
	ctx := context.Background()
	store := queryfake.NewSeeded()
	client := newTestClient(t, newTestServer(t, store))

	var all []notes.Note
	token := ""
	for {
		result, err := client.ListNotes(ctx, 10, token)
		require.NoError(t, err)
		require.Empty(t, result.Errors)
		all = append(all, result.Notes...)
		if result.NextToken == "" {
			break
		}
		token = result.NextToken
	}

	require.Len(t, all, store.Len())
	seen := make(map[string]bool, len(all))
	for _, n := range all {
		require.False(t, seen[n.ID])
		seen[n.ID] = true
	}
}

func TestListNotesClampsLimit(t *testing.T) {
	client := newTestClient(t, newTestServer(t, queryfake.NewSeeded()))

	result, err := client.ListNotes(context.Background(), 50, "")
	require.NoError(t, err)
	require.Len(t, result.Notes, notes.MaxPageSize)
}

func TestSaveGetDeleteRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, newTestServer(t, queryfake.New()))

	item := notes.New()
	item.Title = "round trip"
	item.Content = "body"

	saved, err := client.SaveNote(ctx, item)
	require.NoError(t, err)
	require.Empty(t, saved.Errors)
	require.Equal(t, item.ID, saved.Note.ID)
	require.Equal(t, "round trip", saved.Note.Title)

	fetched, err := client.GetNote(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.Note)
	require.Equal(t, "body", fetched.Note.Content)

	deleted, err := client.DeleteNote(ctx, item.ID)
	require.NoError(t, err)
	require.Empty(t, deleted.Errors)

	gone, err := client.GetNote(ctx, item.ID)
	require.NoError(t, err)
	require.Nil(t, gone.Note)
}

func TestGetUnknownNoteReturnsNil(t *testing.T) {
	client := newTestClient(t, newTestServer(t, queryfake.NewSeeded()))

	result, err := client.GetNote(context.Background(), "no-such-id")
	require.NoError(t, err)
	require.Nil(t, result.Note)
}

func TestDeleteUnknownNoteSucceeds(t *testing.T) {
	client := newTestClient(t, newTestServer(t, queryfake.NewSeeded()))

	result, err := client.DeleteNote(context.Background(), "no-such-id")
	require.NoError(t, err)
	require.Empty(t, result.Errors)
}

func TestRemoteSourceWorksOverHTTP(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, newTestServer(t, queryfake.NewSeeded()))
	src := notes.NewRemoteSource(client)

	initial, err := src.LoadInitial(ctx, notes.InitialParams{RequestedSize: 10})
	require.NoError(t, err)
	require.Len(t, initial.Notes, 10)
	require.NotNil(t, initial.NextKey)

	page, err := src.LoadAfter(ctx, *initial.NextKey, 10)
	require.NoError(t, err)
	require.Len(t, page.Notes, 10)
	require.NotEqual(t, initial.Notes[0].ID, page.Notes[0].ID)
}
