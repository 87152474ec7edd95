package main

import (
	"fmt"

	"github.com/trezcool/masomo-dashboard/core/user"
)

func (cli *commandLine) hashPassword(pwd string) error {
	hash, err := user.HashPassword(pwd)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, hash)
	return nil
}
