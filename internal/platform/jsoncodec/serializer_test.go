package jsoncodec

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

type payload struct {
	CaseID string  `json:"caseId"`
	Kg     float64 `json:"kg"`
}

func newContext(body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.JSONSerializer = Serializer{}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestSerializer_RoundTrip(t *testing.T) {
	c, rec := newContext(`{"caseId":"c-1","kg":7.5}`)

	var p payload
	if err := c.Bind(&p); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if p.CaseID != "c-1" || p.Kg != 7.5 {
		t.Errorf("unexpected payload %+v", p)
	}

	if err := c.JSON(http.StatusOK, p); err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"caseId":"c-1","kg":7.5}` {
		t.Errorf("unexpected body %s", got)
	}
}

func TestSerializer_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", `{"caseId":`},
		{"type", `{"kg":"heavy"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newContext(tt.body)
			var p payload
			err := Serializer{}.Deserialize(c, &p)
			he, ok := err.(*echo.HTTPError)
			if !ok {
				t.Fatalf("expected echo.HTTPError, got %T (%v)", err, err)
			}
			if he.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", he.Code)
			}
		})
	}
}
