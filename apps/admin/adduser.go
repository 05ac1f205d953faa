package main

import (
	"github.com/pkg/errors"

	"github.com/Tomtimmy/learnspace/core"
	"github.com/Tomtimmy/learnspace/core/user"
)

// addUser creates a user, or promotes and re-credentials an existing one.
func (cli *commandLine) addUser(name, email, pwd string, isAdmin bool) error {
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	role := user.RoleStudent
	if isAdmin {
		role = user.RoleAdmin
	}

	usr, err := cli.usrSvc.GetByEmail(email)
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		_, err = cli.usrSvc.Create(user.NewUser{
			Name:     name,
			Email:    email,
			Password: pwd,
			Role:     role,
		})
		return err
	}

	if _, err = cli.usrSvc.Update(usr.ID, user.UpdateUser{
		Name:   name,
		Email:  usr.Email,
		Role:   role,
		Status: user.StatusActive,
	}); err != nil {
		return err
	}
	_, err = cli.usrSvc.ResetPasswordByID(usr.ID, pwd)
	return err
}
