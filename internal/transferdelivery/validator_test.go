package transferdelivery

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/slavapak/ledger/internal/domain"
)

func TestParseTransferRequest(t *testing.T) {
	testCases := []struct {
		name    string
		body    string
		want    domain.CreateTransferParams
		wantErr bool
	}{
		{
			name: "OKStrings",
			body: `{"userIdFrom":"2","userIdTo":"1","amount":"25"}`,
			want: domain.CreateTransferParams{FromAccountID: 2, ToAccountID: 1, Amount: 25},
		},
		{
			name: "OKNumbers",
			body: `{"userIdFrom":2,"userIdTo":1,"amount":25}`,
			want: domain.CreateTransferParams{FromAccountID: 2, ToAccountID: 1, Amount: 25},
		},
		{
			name: "OKUnknownFieldsIgnored",
			body: `{"userIdFrom":"1","userIdTo":"2","amount":"5","note":{"a":[1,{"b":2}]}}`,
			want: domain.CreateTransferParams{FromAccountID: 1, ToAccountID: 2, Amount: 5},
		},
		{
			name: "OKSurroundingWhitespace",
			body: " \n{\"userIdFrom\":\"1\",\"userIdTo\":\"2\",\"amount\":\"5\"}\n",
			want: domain.CreateTransferParams{FromAccountID: 1, ToAccountID: 2, Amount: 5},
		},
		{name: "NotNumeric", body: `{"userIdFrom":"abc","userIdTo":"1","amount":"25"}`, wantErr: true},
		{name: "FractionalAmount", body: `{"userIdFrom":"2","userIdTo":"1","amount":"1.1"}`, wantErr: true},
		{name: "FractionalNumber", body: `{"userIdFrom":2,"userIdTo":1,"amount":1.5}`, wantErr: true},
		{name: "ExponentNumber", body: `{"userIdFrom":2,"userIdTo":1,"amount":1e2}`, wantErr: true},
		{name: "ZeroAmount", body: `{"userIdFrom":"2","userIdTo":"1","amount":"0"}`, wantErr: true},
		{name: "NegativeAmount", body: `{"userIdFrom":"2","userIdTo":"1","amount":"-5"}`, wantErr: true},
		{name: "ZeroAccount", body: `{"userIdFrom":"0","userIdTo":"1","amount":"5"}`, wantErr: true},
		{name: "EmptyAccount", body: `{"userIdFrom":"","userIdTo":"1","amount":"5"}`, wantErr: true},
		{name: "SQLInjection", body: `{"userIdFrom":";DROP TABLE accounts;","userIdTo":"1","amount":"5"}`, wantErr: true},
		{name: "Overflow", body: `{"userIdFrom":"2","userIdTo":"1","amount":"9223372036854775808"}`, wantErr: true},
		{name: "BoolValue", body: `{"userIdFrom":true,"userIdTo":"1","amount":"5"}`, wantErr: true},
		{name: "NullValue", body: `{"userIdFrom":null,"userIdTo":"1","amount":"5"}`, wantErr: true},
		{name: "ObjectValue", body: `{"userIdFrom":{},"userIdTo":"1","amount":"5"}`, wantErr: true},
		{name: "MissingAmount", body: `{"userIdFrom":"2","userIdTo":"1"}`, wantErr: true},
		{name: "WrongCaseKey", body: `{"userIdFrom":"2","userIdTo":"1","Amount":"5"}`, wantErr: true},
		{name: "SameAccounts", body: `{"userIdFrom":"1","userIdTo":"1","amount":"5"}`, wantErr: true},
		{name: "SameAccountsLeadingZero", body: `{"userIdFrom":"01","userIdTo":"1","amount":"5"}`, wantErr: true},
		{name: "DuplicateKey", body: `{"userIdFrom":"1","userIdTo":"2","amount":"5","amount":"6"}`, wantErr: true},
		{name: "NestedDuplicateKey", body: `{"userIdFrom":"1","userIdTo":"2","amount":"5","x":[{"a":1,"a":2}]}`, wantErr: true},
		{name: "TrailingData", body: `{"userIdFrom":"1","userIdTo":"2","amount":"5"} {}`, wantErr: true},
		{name: "NotJSON", body: `userIdFrom=1&userIdTo=2&amount=5`, wantErr: true},
		{name: "Array", body: `[{"userIdFrom":"1","userIdTo":"2","amount":"5"}]`, wantErr: true},
		{name: "Null", body: `null`, wantErr: true},
		{name: "Empty", body: ``, wantErr: true},
		{name: "Truncated", body: `{"userIdFrom":"1","userIdTo":"2"`, wantErr: true},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseTransferRequest([]byte(tc.body))
			if tc.wantErr {
				if !errors.Is(err, domain.ErrBadRequest) {
					t.Fatalf("ParseTransferRequest(%q) error = %v, want %v", tc.body, err, domain.ErrBadRequest)
				}

				require.Equal(t, domain.CreateTransferParams{}, got)

				return
			}

			require.NoError(t, err)

			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ParseTransferRequest(%q) mismatch (-want +got):\n%s", tc.body, diff)
			}
		})
	}
}
