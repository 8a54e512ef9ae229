package quorum

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/iov-one/quorum/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConditionParse(t *testing.T) {
	cases := map[string]struct {
		cond    Condition
		wantExt string
		wantTyp string
		wantErr *errors.Error
	}{
		"valid": {
			cond:    NewCondition("sigs", "ed25519", []byte{1, 2, 3}),
			wantExt: "sigs",
			wantTyp: "ed25519",
		},
		"data may contain newlines": {
			cond:    NewCondition("sigs", "ed25519", []byte("\n\n")),
			wantExt: "sigs",
			wantTyp: "ed25519",
		},
		"extension too short": {
			cond:    NewCondition("x", "ed25519", []byte{1}),
			wantErr: errors.ErrInput,
		},
		"missing data": {
			cond:    Condition("sigs/ed25519/"),
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			ext, typ, _, err := tc.cond.Parse()
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr.Is(err), "%+v", err)
				assert.Error(t, tc.cond.Validate())
				return
			}
			require.NoError(t, err)
			assert.NoError(t, tc.cond.Validate())
			assert.Equal(t, tc.wantExt, ext)
			assert.Equal(t, tc.wantTyp, typ)
		})
	}
}

func TestConditionJSON(t *testing.T) {
	cond := NewCondition("sigs", "ed25519", []byte{0xCA, 0xFE})
	raw, err := json.Marshal(cond)
	require.NoError(t, err)
	assert.Equal(t, `"sigs/ed25519/CAFE"`, string(raw))

	var back Condition
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, cond, back)
}

func TestAddressValidate(t *testing.T) {
	assert.NoError(t, NewAddress([]byte("alice")).Validate())
	assert.True(t, errors.ErrInput.Is(Address(nil).Validate()))
	assert.True(t, errors.ErrInput.Is(Address([]byte{1, 2, 3}).Validate()))
	assert.Nil(t, NewAddress(nil))
}

func TestAddressUnmarshalJSON(t *testing.T) {
	addr := NewAddress([]byte("alice"))
	cond := NewCondition("sigs", "ed25519", []byte{1, 2, 3})
	b32, err := addr.Bech32("tiov")
	require.NoError(t, err)

	cases := map[string]struct {
		json    string
		want    Address
		wantErr *errors.Error
	}{
		"default hex": {
			json: fmt.Sprintf(`"%s"`, hex.EncodeToString(addr)),
			want: addr,
		},
		"explicit hex": {
			json: fmt.Sprintf(`"hex:%s"`, hex.EncodeToString(addr)),
			want: addr,
		},
		"condition": {
			json: `"cond:sigs/ed25519/010203"`,
			want: cond.Address(),
		},
		"bech32": {
			json: fmt.Sprintf(`"bech32:%s"`, b32),
			want: addr,
		},
		"empty": {
			json: `""`,
			want: nil,
		},
		"wrong length": {
			json:    `"0102"`,
			wantErr: errors.ErrInput,
		},
		"invalid hex": {
			json:    `"zz"`,
			wantErr: errors.ErrInput,
		},
		"unknown format": {
			json:    `"base64:AAAA"`,
			wantErr: errors.ErrType,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var got Address
			err := json.Unmarshal([]byte(tc.json), &got)
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr.Is(err), "%+v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAddressMarshalJSON(t *testing.T) {
	addr := Address([]byte{0xAB, 0xCD})
	raw, err := json.Marshal(addr)
	require.NoError(t, err)
	assert.Equal(t, `"ABCD"`, string(raw))
	assert.Equal(t, "ABCD", addr.String())
	assert.Equal(t, "(nil)", Address(nil).String())
}
