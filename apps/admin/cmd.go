package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/masomo-dashboard/core"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf *core.Config
	out  io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  hashpassword - print the bcrypt hash of the prompted password (for BOOTSTRAPPASSWORDHASH)")
	fmt.Fprintln(cli.out, "  gentoken -uid UID -email EMAIL [-gen GENERATION] - print a session token (DEV only)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	hashPasswordCmd := flag.NewFlagSet("hashpassword", flag.ContinueOnError)
	hashPasswordCmd.SetOutput(cli.out)

	genTokenCmd := flag.NewFlagSet("gentoken", flag.ContinueOnError)
	genTokenCmd.SetOutput(cli.out)
	genTokenUID := genTokenCmd.String("uid", "", "The account ID.")
	genTokenEmail := genTokenCmd.String("email", "", "The account email.")
	genTokenGen := genTokenCmd.Int("gen", 0, "The account's session generation.")

	switch args[1] {
	case "hashpassword":
		if err := hashPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			hashPasswordCmd.Usage()
			return errHelp
		}
		return cli.hashPassword(string(pwd))
	case "gentoken":
		if err := genTokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *genTokenUID == "" || *genTokenEmail == "" {
			genTokenCmd.Usage()
			return errHelp
		}
		return cli.genToken(*genTokenUID, *genTokenEmail, *genTokenGen)
	default:
		cli.printUsage()
		return errHelp
	}
}
