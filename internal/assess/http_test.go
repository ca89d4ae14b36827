package assess_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/tutoria/internal/assess"
	"github.com/abhisek/tutoria/internal/assess/assesstest"
)

func newClient(t *testing.T, srv *assesstest.Server) *assess.HTTPService {
	t.Helper()
	svc, err := assess.NewHTTPService(assess.Config{BaseURL: srv.URL + "/", Timeout: 2 * time.Second})
	require.NoError(t, err)
	return svc
}

func TestFetchQuestion_Decodes(t *testing.T) {
	srv := assesstest.NewServer()
	defer srv.Close()
	srv.Queue(assesstest.PathQuestion, http.StatusOK, `{
		"pregunta": {"id": 12, "texto": "¿Cuánto es 3/4 + 1/4?", "habilidad": "fracciones", "opciones": ["1", "2", "3/4"]},
		"predicciones": [
			{"habilidad": "fracciones", "prob_acierto": 0.31},
			{"habilidad": "sumas", "prob_acierto": 0.9}
		]
	}`)

	resp, err := newClient(t, srv).FetchQuestion(context.Background())
	require.NoError(t, err)
	require.NotNil(t, resp.Question)

	assert.False(t, resp.Completed)
	assert.Equal(t, assess.IDFromInt(12), resp.Question.ID)
	assert.Equal(t, "fracciones", resp.Question.Skill)
	assert.Equal(t, []string{"1", "2", "3/4"}, resp.Question.Options)
	assert.Equal(t, []assess.SkillPrediction{
		{Skill: "fracciones", MasteryProbability: 0.31},
		{Skill: "sumas", MasteryProbability: 0.9},
	}, resp.Predictions)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodGet, reqs[0].Method)
}

func TestFetchQuestion_Completed(t *testing.T) {
	srv := assesstest.NewServer()
	defer srv.Close()
	srv.Queue(assesstest.PathQuestion, http.StatusOK, `{
		"completado": true,
		"predicciones": [{"habilidad": "sumas", "prob_acierto": 0.97}]
	}`)

	resp, err := newClient(t, srv).FetchQuestion(context.Background())
	require.NoError(t, err)
	assert.True(t, resp.Completed)
	assert.Nil(t, resp.Question)
	assert.Len(t, resp.Predictions, 1)
}

func TestFetchQuestion_CompletedIgnoresStrayQuestion(t *testing.T) {
	srv := assesstest.NewServer()
	defer srv.Close()
	srv.Queue(assesstest.PathQuestion, http.StatusOK, `{
		"completado": true,
		"pregunta": {"id": 1, "texto": "x", "habilidad": "s", "opciones": ["a"]},
		"predicciones": []
	}`)

	resp, err := newClient(t, srv).FetchQuestion(context.Background())
	require.NoError(t, err)
	assert.True(t, resp.Completed)
	assert.Nil(t, resp.Question)
}

func TestFetchQuestion_EmptyPredictions(t *testing.T) {
	srv := assesstest.NewServer()
	defer srv.Close()
	srv.Queue(assesstest.PathQuestion, http.StatusOK, `{
		"completado": false,
		"pregunta": {"id": "q-1", "texto": "x", "habilidad": "s", "opciones": ["a", "b"]},
		"predicciones": []
	}`)

	resp, err := newClient(t, srv).FetchQuestion(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, resp.Predictions)
	assert.Empty(t, resp.Predictions)
	assert.Equal(t, "q-1", resp.Question.ID.String())
}

func TestFetchQuestion_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>oops</html>`},
		{"missing predictions", `{"pregunta": {"id": 1, "texto": "x", "habilidad": "s", "opciones": ["a"]}}`},
		{"missing question", `{"predicciones": []}`},
		{"null id", `{"pregunta": {"id": null, "texto": "x", "habilidad": "s", "opciones": ["a"]}, "predicciones": []}`},
		{"no options", `{"pregunta": {"id": 1, "texto": "x", "habilidad": "s", "opciones": []}, "predicciones": []}`},
		{"probability as string", `{"completado": true, "predicciones": [{"habilidad": "s", "prob_acierto": "0.5"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := assesstest.NewServer()
			defer srv.Close()
			srv.Queue(assesstest.PathQuestion, http.StatusOK, tt.body)

			_, err := newClient(t, srv).FetchQuestion(context.Background())
			require.Error(t, err)

			var me *assess.ErrMalformedResponse
			require.True(t, errors.As(err, &me), "got %T: %v", err, err)
			assert.Equal(t, assess.OpFetchQuestion, me.Op)
			assert.Equal(t, tt.body, string(me.Content))
		})
	}
}

func TestVerifyAnswer_EchoesID(t *testing.T) {
	tests := []struct {
		name   string
		id     assess.QuestionID
		wantID string
	}{
		{"numeric", assess.IDFromInt(7), `7`},
		{"string", assess.IDFromString("abc"), `"abc"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := assesstest.NewServer()
			defer srv.Close()
			srv.Queue(assesstest.PathVerify, http.StatusOK, `{
				"resultado": "incorrecta",
				"respuesta_correcta": "4",
				"predicciones_actualizadas": [{"habilidad": "sumas", "prob_acierto": 0.4}]
			}`)

			resp, err := newClient(t, srv).VerifyAnswer(context.Background(), assess.VerifyRequest{ID: tt.id, Answer: "3"})
			require.NoError(t, err)

			result := resp.Result()
			assert.False(t, result.IsCorrect())
			assert.Equal(t, "4", result.CorrectAnswer)

			reqs := srv.Requests()
			require.Len(t, reqs, 1)
			assert.Equal(t, http.MethodPost, reqs[0].Method)

			var body map[string]json.RawMessage
			require.NoError(t, json.Unmarshal([]byte(reqs[0].Body), &body))
			assert.Equal(t, tt.wantID, string(body["id"]))
			assert.Equal(t, `"3"`, string(body["respuesta"]))
		})
	}
}

func TestVerifyAnswer_Correct(t *testing.T) {
	srv := assesstest.NewServer()
	defer srv.Close()
	srv.Queue(assesstest.PathVerify, http.StatusOK, `{
		"resultado": "correcta",
		"respuesta_correcta": "4",
		"predicciones_actualizadas": []
	}`)

	resp, err := newClient(t, srv).VerifyAnswer(context.Background(), assess.VerifyRequest{ID: assess.IDFromInt(1), Answer: "4"})
	require.NoError(t, err)
	assert.True(t, resp.Result().IsCorrect())
	assert.Equal(t, "4", resp.Result().CorrectAnswer)
}

func TestVerifyAnswer_NotFound(t *testing.T) {
	srv := assesstest.NewServer()
	defer srv.Close()
	srv.Queue(assesstest.PathVerify, http.StatusNotFound, `{"error": "Pregunta no encontrada"}`)

	_, err := newClient(t, srv).VerifyAnswer(context.Background(), assess.VerifyRequest{ID: assess.IDFromInt(99), Answer: "x"})
	require.Error(t, err)

	var se *assess.ErrStatus
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Contains(t, se.Body, "Pregunta no encontrada")
	assert.Equal(t, http.StatusNotFound, assess.StatusCode(err))
}

func TestReset_IgnoresBody(t *testing.T) {
	srv := assesstest.NewServer()
	defer srv.Close()
	srv.Queue(assesstest.PathReset, http.StatusOK, `not even json`)

	err := newClient(t, srv).Reset(context.Background())
	require.NoError(t, err)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Empty(t, reqs[0].Body)
}

func TestTransportError(t *testing.T) {
	srv := assesstest.NewServer()
	svc := newClient(t, srv)
	srv.Close()

	_, err := svc.FetchQuestion(context.Background())
	require.Error(t, err)

	var te *assess.ErrTransport
	require.True(t, errors.As(err, &te), "got %T", err)
	assert.Equal(t, assess.OpFetchQuestion, te.Op)
	assert.Equal(t, "Could not reach the tutoring service.", assess.Describe(err))
}

func TestContextCancelled(t *testing.T) {
	srv := assesstest.NewServer()
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := newClient(t, srv).Reset(ctx)
	var te *assess.ErrTransport
	require.True(t, errors.As(err, &te))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResetThenFetchOrder(t *testing.T) {
	srv := assesstest.NewServer()
	defer srv.Close()
	srv.Queue(assesstest.PathReset, http.StatusOK, `{"mensaje": "ok"}`)
	srv.Queue(assesstest.PathQuestion, http.StatusOK, `{"completado": true, "predicciones": []}`)

	svc := newClient(t, srv)
	require.NoError(t, svc.Reset(context.Background()))
	_, err := svc.FetchQuestion(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{assesstest.PathReset, assesstest.PathQuestion}, srv.Paths())
}

func TestNewHTTPService_InvalidBaseURL(t *testing.T) {
	for _, raw := range []string{"", "127.0.0.1:5000", "ftp://host", "http://"} {
		_, err := assess.NewHTTPService(assess.Config{BaseURL: raw})
		assert.Error(t, err, "base URL %q", raw)
	}
}
