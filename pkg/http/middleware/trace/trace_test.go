package trace

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewTraceMiddleware(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	router := chi.NewRouter()
	router.Use(NewTraceMiddleware)
	router.Get("/orders/{orderID}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Get("/boom", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	tests := []struct {
		name           string
		path           string
		expectedName   string
		expectedStatus codes.Code
	}{
		{name: "route pattern", path: "/orders/o1", expectedName: "GET /orders/{orderID}", expectedStatus: codes.Unset},
		{name: "server error", path: "/boom", expectedName: "GET /boom", expectedStatus: codes.Error},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, testCase.path, nil))

			spans := recorder.Ended()
			require.NotEmpty(t, spans)
			span := spans[len(spans)-1]
			assert.Equal(t, testCase.expectedName, span.Name())
			assert.Equal(t, testCase.expectedStatus, span.Status().Code)
		})
	}
}
