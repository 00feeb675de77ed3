package transferdelivery

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"

	"github.com/slavapak/ledger/internal/domain"
	"github.com/slavapak/ledger/pkg/intpkg"
)

const (
	fieldFrom   = "userIdFrom"
	fieldTo     = "userIdTo"
	fieldAmount = "amount"
)

var (
	errNotObject    = errors.New("request body is not a json object")
	errDuplicateKey = errors.New("duplicate key")
	errTrailingData = errors.New("trailing data after json object")
	errNullValue    = errors.New("null value")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := intpkg.RegisterValidation(v); err != nil {
		panic(err)
	}

	return v
}

// intText holds an integer in text form taken from a JSON string or a bare
// JSON literal. Whether the text is a valid integer is decided by validation.
type intText string

func (t *intText) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return errNullValue
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}

		*t = intText(s)

		return nil
	}

	*t = intText(b)

	return nil
}

type request struct {
	FromAccountID intText `validate:"required,positiveint"`
	ToAccountID   intText `validate:"required,positiveint"`
	Amount        intText `validate:"required,positiveint"`
}

// ParseTransferRequest parses and validates a raw transfer request body.
//
// The body must be a single JSON object without repeated keys at any depth.
// Fields are matched by exact name and unknown fields are ignored. Every
// failure is reported as domain.ErrBadRequest wrapping the cause.
func ParseTransferRequest(body []byte) (domain.CreateTransferParams, error) {
	var arg domain.CreateTransferParams

	if err := checkDuplicateKeys(body); err != nil {
		return arg, fmt.Errorf("%w: %w", domain.ErrBadRequest, err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return arg, fmt.Errorf("%w: %w", domain.ErrBadRequest, err)
	}

	var req request

	targets := map[string]*intText{
		fieldFrom:   &req.FromAccountID,
		fieldTo:     &req.ToAccountID,
		fieldAmount: &req.Amount,
	}

	for name, target := range targets {
		raw, ok := fields[name]
		if !ok {
			continue
		}

		if err := json.Unmarshal(raw, target); err != nil {
			return arg, fmt.Errorf("%w: %s: %w", domain.ErrBadRequest, name, err)
		}
	}

	if err := validate.Struct(req); err != nil {
		return arg, fmt.Errorf("%w: %w", domain.ErrBadRequest, err)
	}

	// Validated above, parsing cannot fail.
	arg.FromAccountID, _ = intpkg.ParsePositive(string(req.FromAccountID))
	arg.ToAccountID, _ = intpkg.ParsePositive(string(req.ToAccountID))
	arg.Amount, _ = intpkg.ParsePositive(string(req.Amount))

	if arg.FromAccountID == arg.ToAccountID {
		return domain.CreateTransferParams{}, fmt.Errorf("%w: %w", domain.ErrBadRequest, domain.ErrInvalidTransfer)
	}

	return arg, nil
}

// checkDuplicateKeys walks the JSON token stream of body and fails when body
// is not exactly one object or when any object repeats a key.
func checkDuplicateKeys(body []byte) error {
	dec := json.NewDecoder(bytes.NewReader(body))

	tok, err := dec.Token()
	if err != nil {
		return err
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errNotObject
	}

	if err := walkObject(dec); err != nil {
		return err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errTrailingData
	}

	return nil
}

func walkObject(dec *json.Decoder) error {
	seen := make(map[string]struct{})

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}

		key, ok := tok.(string)
		if !ok {
			return errNotObject
		}

		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: %q", errDuplicateKey, key)
		}

		seen[key] = struct{}{}

		if err := walkValue(dec); err != nil {
			return err
		}
	}

	// closing brace
	_, err := dec.Token()

	return err
}

func walkValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	switch tok {
	case json.Delim('{'):
		return walkObject(dec)
	case json.Delim('['):
		for dec.More() {
			if err := walkValue(dec); err != nil {
				return err
			}
		}

		_, err := dec.Token()

		return err
	}

	return nil
}
