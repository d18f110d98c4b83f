package database

import (
	"context"
	"errors"
	"testing"
)

func TestNewDatabaseStartsDisconnected(t *testing.T) {
	d := NewDatabase("mongodb://localhost:27017", "PancyModTest")

	if d.Connected() {
		t.Error("Connected() should be false before Connect")
	}

	if _, err := d.Ping(); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Ping() error = %v, want %v", err, ErrNotConnected)
	}

	if status, online := d.GetStatus(); online {
		t.Errorf("GetStatus() = (%v, %v), want offline", status, online)
	}

	if col := d.GetCollection("warnings"); col != nil {
		t.Error("GetCollection() should return nil while disconnected")
	}

	if err := d.EnsureIndexes(context.Background(), "warnings"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("EnsureIndexes() error = %v, want %v", err, ErrNotConnected)
	}
}

func TestDisconnectWithoutClient(t *testing.T) {
	d := NewDatabase("mongodb://localhost:27017", "PancyModTest")

	if err := d.Disconnect(); err != nil {
		t.Errorf("Disconnect() error = %v, want nil", err)
	}
	// Second call must not panic on the closed stop channel
	if err := d.Disconnect(); err != nil {
		t.Errorf("second Disconnect() error = %v, want nil", err)
	}
}

func TestMarkDisconnectedWhenOffline(t *testing.T) {
	d := NewDatabase("mongodb://localhost:27017", "PancyModTest")
	defer d.Disconnect()

	d.MarkDisconnected()

	if d.Connected() {
		t.Error("Connected() should stay false")
	}
}
