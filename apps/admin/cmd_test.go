package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/academia-hub/academia/core/user"
	dummydb "github.com/academia-hub/academia/storage/database/dummy"
)

func setup(t *testing.T) *commandLine {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open(): %v", err)
	}
	return &commandLine{usrRepo: dummydb.NewUserRepository(db)}
}

func mockPassword(pwd string) {
	readPasswordFunc = func(fd int) ([]byte, error) {
		return []byte(pwd), nil
	}
}

func Test_commandLine_run(t *testing.T) {
	cli := setup(t)
	mockPassword("")

	tests := []struct {
		name    string
		args    []string // without program name
		wantErr error
	}{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "adduser: no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "adduser: no password", args: []string{"adduser", "-name", "Awe", "-email", "awe@test.cd"}, wantErr: errHelp},
		{name: "resetpassword: no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "migrate: no subcommand", args: []string{"migrate"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"admin"}, tt.args...)
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)
	mockPassword("LePassw0rd")

	t.Run("unknown role is rejected", func(t *testing.T) {
		err := cli.run([]string{"admin", "adduser", "-name", "Awe", "-email", "awe@test.cd", "-role", "boss"})
		if err != errUnknownRole {
			t.Errorf("cli.run() error = %v, wantErr %v", err, errUnknownRole)
		}
	})

	t.Run("creates a new admin", func(t *testing.T) {
		if err := cli.run([]string{"admin", "adduser", "-name", "Awe", "-email", "awe@test.cd"}); err != nil {
			t.Fatalf("cli.run(): %v", err)
		}
		usr, err := cli.usrRepo.GetUser(context.Background(), user.GetFilter{Email: "awe@test.cd"})
		if err != nil {
			t.Fatalf("GetUser(): %v", err)
		}
		if usr.Role != user.RoleAdmin {
			t.Errorf("role = %q, want %q", usr.Role, user.RoleAdmin)
		}
		if !usr.IsActive {
			t.Error("expected user to be active")
		}
		if err := usr.CheckPassword("LePassw0rd"); err != nil {
			t.Error("password was not set")
		}
	})

	t.Run("updates an existing user", func(t *testing.T) {
		mockPassword("NewPassw0rd")
		if err := cli.run([]string{"admin", "adduser", "-name", "Awe Renamed", "-email", "awe@test.cd", "-role", user.RoleHOD}); err != nil {
			t.Fatalf("cli.run(): %v", err)
		}
		usr, err := cli.usrRepo.GetUser(context.Background(), user.GetFilter{Email: "awe@test.cd"})
		if err != nil {
			t.Fatalf("GetUser(): %v", err)
		}
		if usr.Name != "Awe Renamed" {
			t.Errorf("name = %q, want %q", usr.Name, "Awe Renamed")
		}
		if usr.Role != user.RoleHOD {
			t.Errorf("role = %q, want %q", usr.Role, user.RoleHOD)
		}
		if err := usr.CheckPassword("NewPassw0rd"); err != nil {
			t.Error("password was not updated")
		}
	})
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	now := time.Now().UTC()
	usr := user.User{Name: "Awe", Email: "awe@test.cd", Role: user.RoleStudent, IsActive: true, CreatedAt: now, UpdatedAt: now}
	if err := usr.SetPassword("mdr"); err != nil {
		t.Fatalf("SetPassword(): %v", err)
	}
	usr, err := cli.usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}

	t.Run("user not found", func(t *testing.T) {
		mockPassword("lol")
		if err := cli.run([]string{"admin", "resetpassword", "-email", "lol@test.cd"}); err != user.ErrNotFound {
			t.Errorf("cli.run() error = %v, wantErr %v", err, user.ErrNotFound)
		}
	})

	t.Run("resets the password", func(t *testing.T) {
		mockPassword("lmao")
		if err := cli.run([]string{"admin", "resetpassword", "-email", usr.Email}); err != nil {
			t.Fatalf("cli.run(): %v", err)
		}
		refreshed, err := cli.usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
		if err != nil {
			t.Fatalf("GetUser(): %v", err)
		}
		if bytes.Equal(refreshed.PasswordHash, usr.PasswordHash) {
			t.Error("failed to update new password")
		}
	})
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	var gotCommand string
	var gotArgs []string
	gooseRunFunc = func(db *sql.DB, command string, args ...string) error {
		gotCommand = command
		gotArgs = args
		switch command {
		case "up", "down", "status", "version", "up-to", "down-to", "redo", "reset":
			return nil
		}
		return fmt.Errorf("%q: no such command", command)
	}

	t.Run("forwards the command and args", func(t *testing.T) {
		if err := cli.run([]string{"admin", "migrate", "up-to", "2"}); err != nil {
			t.Fatalf("cli.run(): %v", err)
		}
		if gotCommand != "up-to" {
			t.Errorf("command = %q, want %q", gotCommand, "up-to")
		}
		if len(gotArgs) != 1 || gotArgs[0] != "2" {
			t.Errorf("args = %v, want [2]", gotArgs)
		}
	})

	t.Run("unknown subcommand", func(t *testing.T) {
		err := cli.run([]string{"admin", "migrate", "lol"})
		if err == nil || err.Error() != `"lol": no such command` {
			t.Errorf("cli.run() error = %v", err)
		}
	})
}
