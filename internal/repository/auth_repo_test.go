package repository

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestUserCreate(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(insertUserSQL)).
		WithArgs("amir", "hash").
		WillReturnResult(sqlmock.NewResult(42, 1))

	id, err := repo.Create("amir", "hash")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id != 42 {
		t.Fatalf("want id 42, got %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestUserCreate_DBError(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").WillReturnError(errors.New("locked"))

	_, err := repo.Create("amir", "hash")
	if err == nil || !strings.Contains(err.Error(), "locked") {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestGetByUsername_NotFoundReturnsNil(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(selectUserByUsernameSQL)).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash"}))

	u, err := repo.GetByUsername("ghost")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if u != nil {
		t.Fatalf("want nil user, got %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestGetByUsername_Found(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(selectUserByUsernameSQL)).
		WithArgs("amir").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash"}).
			AddRow(1, "amir", "hash"))

	u, err := repo.GetByUsername("amir")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if u == nil || u.ID != 1 || u.Username != "amir" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}
