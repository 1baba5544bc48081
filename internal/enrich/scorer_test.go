package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/azielinski/jobradar/internal/model"
)

func scoringEndpoint(t *testing.T, status int, reply string, captured *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		if captured != nil {
			require.NoError(t, json.Unmarshal(payload, captured))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, reply)
	}))
}

const completionReply = `{"choices":[{"message":{"role":"assistant",` +
	`"content":"{\"ocena_oferty\": 50, \"dopasowanie_kandydata\": 40}"}}]}`

func TestCompleteSendsDeterministicSampling(t *testing.T) {
	var body map[string]any
	srv := scoringEndpoint(t, http.StatusOK, completionReply, &body)
	defer srv.Close()

	d := NewDeepSeek(DeepSeekConfig{APIKey: "test-key", BaseURL: srv.URL})
	messages := BuildMessages("profil kandydata", "reguły oceny", model.JobOffer{
		URL:         "https://testboard.example/job/001",
		Description: "Budowanie usług w Go.",
	})

	out, err := d.Complete(context.Background(), messages)
	require.NoError(t, err)
	require.Contains(t, out, "ocena_oferty")

	// The temperature must be on the wire; omitted, the service would
	// sample at its own default instead of 0.
	require.Contains(t, body, "temperature")
	temp, ok := body["temperature"].(float64)
	require.True(t, ok)
	require.InDelta(t, 0, temp, 1e-9)

	require.Equal(t, "deepseek-reasoner", body["model"])
	require.Equal(t, float64(1), body["top_p"])
	require.Equal(t, float64(10000), body["max_tokens"])
	require.Equal(t, map[string]any{"type": "json_object"}, body["response_format"])
}

func TestCompleteClassifiesServiceErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   error
	}{
		{"authentication", http.StatusUnauthorized, ErrAuthentication},
		{"rate limit", http.StatusTooManyRequests, ErrRateLimited},
		{"generic", http.StatusInternalServerError, ErrService},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := scoringEndpoint(t, tc.status, `{"error":{"message":"nope","type":"invalid_request_error"}}`, nil)
			defer srv.Close()

			d := NewDeepSeek(DeepSeekConfig{APIKey: "test-key", BaseURL: srv.URL})
			_, err := d.Complete(context.Background(), nil)
			require.ErrorIs(t, err, tc.want)
		})
	}
}
