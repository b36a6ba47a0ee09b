package ethtypes

import "testing"

func TestEncodeDecodeWithdrawalRoundTrip(t *testing.T) {
	w := &Withdrawal{Index: 1, ValidatorIndex: 2, Address: HexToAddress("0x0102"), Amount: 100}

	encoded := EncodeWithdrawal(w)
	if encoded == nil {
		t.Fatal("EncodeWithdrawal returned nil")
	}

	decoded, err := DecodeWithdrawal(encoded)
	if err != nil {
		t.Fatalf("DecodeWithdrawal: %v", err)
	}
	if *decoded != *w {
		t.Errorf("decoded = %+v, want %+v", decoded, w)
	}
}

func TestWithdrawalHashIsDeterministicAndSensitiveToContent(t *testing.T) {
	a := &Withdrawal{Index: 1, ValidatorIndex: 2, Address: HexToAddress("0x01"), Amount: 100}
	b := &Withdrawal{Index: 1, ValidatorIndex: 2, Address: HexToAddress("0x01"), Amount: 100}
	c := &Withdrawal{Index: 1, ValidatorIndex: 2, Address: HexToAddress("0x01"), Amount: 200}

	if WithdrawalHash(a) != WithdrawalHash(b) {
		t.Error("identical withdrawals hashed differently")
	}
	if WithdrawalHash(a) == WithdrawalHash(c) {
		t.Error("withdrawals differing in amount hashed identically")
	}
}

func TestValidateWithdrawal(t *testing.T) {
	if err := ValidateWithdrawal(nil); err != errNilWithdrawal {
		t.Errorf("ValidateWithdrawal(nil) = %v, want errNilWithdrawal", err)
	}
	if err := ValidateWithdrawal(&Withdrawal{Address: Address{}}); err != errZeroAddress {
		t.Errorf("ValidateWithdrawal(zero address) = %v, want errZeroAddress", err)
	}
	if err := ValidateWithdrawal(&Withdrawal{Address: HexToAddress("0x01")}); err != nil {
		t.Errorf("ValidateWithdrawal(valid) = %v, want nil", err)
	}
}
