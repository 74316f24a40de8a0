package gormstore

import (
	"context"
	"testing"

	"github.com/nathoo/gloomcore/store"
)

func TestSaveSlot_TableName(t *testing.T) {
	if got := (SaveSlot{}).TableName(); got != "save_slots" {
		t.Errorf("table = %q", got)
	}
}

func TestStore_PutRejectsBadName(t *testing.T) {
	var s Store
	if err := s.Put(context.Background(), "../x", store.Record{}); err == nil {
		t.Error("expected invalid name error")
	}
}
