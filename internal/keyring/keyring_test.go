package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestTokenRoundTrip(t *testing.T) {
	gokeyring.MockInit()

	if err := SetToken("T1", "xoxs-secret"); err != nil {
		t.Fatal(err)
	}
	got, err := Token("T1")
	if err != nil {
		t.Fatal(err)
	}
	if got != "xoxs-secret" {
		t.Fatalf("token = %q", got)
	}

	if err := DeleteToken("T1"); err != nil {
		t.Fatal(err)
	}
	if _, err := Token("T1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("after delete, err = %v, want ErrNotFound", err)
	}
}

func TestTokenMissing(t *testing.T) {
	gokeyring.MockInit()

	if _, err := Token("nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteTokenMissingIsNotAnError(t *testing.T) {
	gokeyring.MockInit()

	if err := DeleteToken("nobody"); err != nil {
		t.Fatalf("deleting a missing token must succeed, got %v", err)
	}
}
