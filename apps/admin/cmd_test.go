package main

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/elimucd/maendeleo/core"
	"github.com/elimucd/maendeleo/core/user"
	inmemdb "github.com/elimucd/maendeleo/storage/database/inmem"
	"github.com/elimucd/maendeleo/tests"
)

func setup(t *testing.T) *commandLine {
	t.Helper()
	db := testutil.OpenDB(t)

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	return &commandLine{
		usrSvc:   user.NewService(inmemdb.NewUserRepository(db)),
		validate: validate,
	}
}

type cliTest struct {
	name    string
	args    []string // without program name
	pwd     string
	wantErr error
	check   func(t *testing.T, cli *commandLine)
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)

	migrateFunc = func(db *sql.DB) error { return nil }

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "migrate", args: []string{"migrate"}},
		{name: "adduser: no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "adduser: name but no username or email", args: []string{"adduser", "-name", "Awe"}, wantErr: errHelp},
		{name: "adduser: no password", args: []string{"adduser", "-name", "Awe", "-username", "awesome"}, wantErr: errHelp},
		{
			name: "adduser", args: []string{"adduser", "-name", "Awe", "-username", "awesome", "-email", "awe@test.cd"},
			pwd: "G00d.Enough.Pwd",
			check: func(t *testing.T, cli *commandLine) {
				usr, err := cli.usrSvc.GetByUsernameOrEmail(context.Background(), "awesome")
				if err != nil {
					t.Fatalf("GetByUsernameOrEmail() failed: %v", err)
				}
				if usr.IsAdmin() {
					t.Error("plain user got admin roles")
				}
				if err := usr.CheckPassword("G00d.Enough.Pwd"); err != nil {
					t.Errorf("CheckPassword() failed: %v", err)
				}
			},
		},
		{
			name: "adduser: admin", args: []string{"adduser", "-name", "Boss", "-username", "bigboss", "-email", "boss@test.cd", "-admin"},
			pwd: "G00d.Enough.Pwd",
			check: func(t *testing.T, cli *commandLine) {
				usr, err := cli.usrSvc.GetByUsernameOrEmail(context.Background(), "bigboss")
				if err != nil {
					t.Fatalf("GetByUsernameOrEmail() failed: %v", err)
				}
				if !usr.IsAdmin() {
					t.Error("admin flag did not grant admin roles")
				}
			},
		},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			return []byte(tt.pwd), nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil && err == nil {
				tt.check(t, cli)
			}
		})
	}

	t.Run("adduser: duplicate username", func(t *testing.T) {
		readPasswordFunc = func(fd int) ([]byte, error) {
			return []byte("G00d.Enough.Pwd"), nil
		}
		err := cli.run([]string{"admin", "adduser", "-name", "Awe 2", "-username", "awesome", "-email", "awe2@test.cd"})
		if _, ok := err.(*core.ValidationError); !ok {
			t.Errorf("cli.run() error = %T (%v); want *core.ValidationError", err, err)
		}
	})
}
