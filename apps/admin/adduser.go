package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"sekolahku/core"
	"sekolahku/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(uname, email, role, linkedStudentID, pwd string) error {
	var usr user.User
	var err error
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	if usr, err = cli.usrRepo.GetUserByUsernameOrEmail(ctx, uname); err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Name:     uname,
			Username: uname,
			Email:    email,
		}
	}
	usr.Role = role
	usr.LinkedStudentID = null.NewString(linkedStudentID, linkedStudentID != "")
	usr.SetActive(true)
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.usrRepo.UpdateOrCreateUser(ctx, usr); err != nil {
		return err
	}
	return nil
}
