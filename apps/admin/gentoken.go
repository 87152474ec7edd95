package main

import (
	"errors"
	"fmt"

	echoapi "github.com/trezcool/masomo-dashboard/apps/api/echo"
	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/session"
)

var errNotInDev = errors.New("gentoken is only available in DEV")

// genToken mints a session token for an existing account, to call the API without logging in.
func (cli *commandLine) genToken(uid, email string, gen int) error {
	if cli.conf.Env != "DEV" && !cli.conf.TestMode {
		return errNotInDev
	}
	id := session.Identity{UID: core.CleanString(uid), Email: core.CleanString(email, true /* lower */), Generation: gen}
	token, err := echoapi.GenerateToken(cli.conf, echoapi.GetIdentityClaims(cli.conf, id))
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, token)
	return nil
}
