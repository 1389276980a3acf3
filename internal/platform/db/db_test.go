package db

import (
	"strings"
	"testing"
)

func TestConnectRejectsMissingDSN(t *testing.T) {
	_, err := Connect(DriverPostgres, "  ")
	if err == nil || !strings.Contains(err.Error(), "dsn is required") {
		t.Fatalf("expected dsn error, got %v", err)
	}
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	_, err := Connect("oracle", "oracle://somewhere")
	if err == nil || !strings.Contains(err.Error(), "unsupported driver") {
		t.Fatalf("expected unsupported driver error, got %v", err)
	}
}

func TestCloseNilDatabase(t *testing.T) {
	var database *Database
	if err := database.Close(); err != nil {
		t.Fatalf("expected nil close to succeed, got %v", err)
	}
}
