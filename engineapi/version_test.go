package engineapi

import (
	"testing"

	"github.com/fenrir-eth/fenrir/internal/chainspec"
)

func TestValidateWithdrawalsPresence(t *testing.T) {
	spec := &chainspec.ChainConfig{ShanghaiTime: ptrU64(100)}

	cases := []struct {
		name           string
		version        Version
		timestamp      uint64
		hasWithdrawals bool
		wantErr        error
	}{
		{"v1 no withdrawals pre-shanghai", V1, 50, false, nil},
		{"v1 withdrawals pre-shanghai rejected", V1, 50, true, ErrWithdrawalsNotSupportedInV1},
		{"v1 withdrawals post-shanghai rejected", V1, 150, true, ErrWithdrawalsNotSupportedInV1},
		{"v1 no withdrawals post-shanghai rejected", V1, 150, false, ErrNoWithdrawalsPostShanghai},
		{"v2 withdrawals post-shanghai ok", V2, 150, true, nil},
		{"v2 no withdrawals post-shanghai rejected", V2, 150, false, ErrNoWithdrawalsPostShanghai},
		{"v2 withdrawals pre-shanghai rejected", V2, 50, true, ErrHasWithdrawalsPreShanghai},
		{"v2 no withdrawals pre-shanghai ok", V2, 50, false, nil},
		{"at shanghai boundary is post", V1, 100, false, ErrNoWithdrawalsPostShanghai},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateWithdrawalsPresence(spec, tc.version, tc.timestamp, tc.hasWithdrawals)
			if err != tc.wantErr {
				t.Fatalf("validateWithdrawalsPresence(%v, %d, %v) = %v, want %v",
					tc.version, tc.timestamp, tc.hasWithdrawals, err, tc.wantErr)
			}
		})
	}
}

// TestValidateWithdrawalsPresenceExhaustive checks every point of the
// (version, hasWithdrawals, isShanghai) cube directly, independent of how
// isShanghai is derived from a timestamp.
func TestValidateWithdrawalsPresenceExhaustive(t *testing.T) {
	preShanghai := &chainspec.ChainConfig{ShanghaiTime: ptrU64(1000)}
	postShanghai := &chainspec.ChainConfig{ShanghaiTime: ptrU64(0)}

	type point struct {
		version        Version
		hasWithdrawals bool
		isShanghai     bool
	}
	want := map[point]error{
		{V1, false, false}: nil,
		{V1, false, true}:  ErrNoWithdrawalsPostShanghai,
		{V1, true, false}:  ErrWithdrawalsNotSupportedInV1,
		{V1, true, true}:   ErrWithdrawalsNotSupportedInV1,
		{V2, false, false}: nil,
		{V2, false, true}:  ErrNoWithdrawalsPostShanghai,
		{V2, true, false}:  ErrHasWithdrawalsPreShanghai,
		{V2, true, true}:   nil,
	}

	for p, wantErr := range want {
		spec := preShanghai
		ts := uint64(1)
		if p.isShanghai {
			spec = postShanghai
			ts = 1
		}
		err := validateWithdrawalsPresence(spec, p.version, ts, p.hasWithdrawals)
		if err != wantErr {
			t.Errorf("point %+v: got %v, want %v", p, err, wantErr)
		}
	}
}

func ptrU64(v uint64) *uint64 { return &v }
