package jsoncodec

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
)

// Serializer is an echo.JSONSerializer backed by goccy/go-json. Decode
// failures become 400 responses.
type Serializer struct{}

func (Serializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := json.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (Serializer) Deserialize(c echo.Context, i interface{}) error {
	err := json.NewDecoder(c.Request().Body).Decode(i)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) {
		return echo.NewHTTPError(http.StatusBadRequest, "request body is empty").SetInternal(err)
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("unmarshal type error: expected=%v, got=%v, field=%v", ute.Type, ute.Value, ute.Field)).SetInternal(err)
	}
	return echo.NewHTTPError(http.StatusBadRequest, "malformed JSON: "+err.Error()).SetInternal(err)
}
