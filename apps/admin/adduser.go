package main

import (
	"context"

	"github.com/elimucd/maendeleo/core"
	"github.com/elimucd/maendeleo/core/user"
)

func (cli *commandLine) addUser(name, uname, email, pwd string, isAdmin bool) error {
	nu := user.NewUser{
		Name:            core.CleanString(name),
		Username:        core.CleanString(uname, true /* lower */),
		Email:           core.CleanString(email, true /* lower */),
		Password:        pwd,
		PasswordConfirm: pwd,
		Roles:           user.StudentRoles,
	}
	if isAdmin {
		nu.Roles = user.AllRoles
	}
	if err := nu.Validate(cli.validate, cli.usrSvc); err != nil {
		return err
	}
	usr, err := cli.usrSvc.Create(context.Background(), nu)
	if err != nil {
		return err
	}
	logger.Printf("user %q created", usr.Username)
	return nil
}
