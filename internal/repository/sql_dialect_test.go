package repository

import (
	"strings"
	"testing"
)

func TestBuildLikeConditionSQLite(t *testing.T) {
	condition, args := buildLikeConditionByDialect("sqlite", " deck ", "title", "description")
	if condition != "title LIKE ? OR description LIKE ?" {
		t.Fatalf("unexpected condition: %s", condition)
	}
	if len(args) != 2 || args[0] != "%deck%" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestBuildLikeConditionPostgresUsesILike(t *testing.T) {
	condition, _ := buildLikeConditionByDialect("postgres", "deck", "title")
	if !strings.Contains(condition, "ILIKE") {
		t.Fatalf("postgres condition should use ILIKE, got %s", condition)
	}
}

func TestBuildLikeConditionSkipsBlankColumns(t *testing.T) {
	condition, args := buildLikeConditionByDialect("sqlite", "x", "", "title", "  ")
	if condition != "title LIKE ?" || len(args) != 1 {
		t.Fatalf("blank columns should be skipped, got %s %v", condition, args)
	}
}

func TestDBDialectNameDefaultsToSQLite(t *testing.T) {
	if got := dbDialectName(nil); got != "sqlite" {
		t.Fatalf("want sqlite got %s", got)
	}
}
