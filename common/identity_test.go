package common

import "testing"

func TestClientSessionIdentityIsNotNilOnInit(t *testing.T) {
	if v := GetClientSessionIdentity(); v == nil {
		t.Errorf("got: %v, want: notnil instance", v)
	} else {
		t.Log(v)
	}
}

func TestSessionIDIsExpected(t *testing.T) {
	if v := SessionID; v == "" || len(v) != 8 {
		t.Errorf("got: %v, want: 8-char hex string", v)
	}
}

func TestSetClientVersion(t *testing.T) {
	SetClientVersion("v0.0.0-test")
	if v := GetClientSessionIdentity().Version; v != "v0.0.0-test" {
		t.Errorf("got: %v, want: v0.0.0-test", v)
	}
}
