// mkadmin bootstraps an administrator account in admin.json so a fresh
// deployment has someone who can log in.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/AntiSecTech/CertVerif/internal/auth"
	"github.com/AntiSecTech/CertVerif/internal/store"
	flag "github.com/spf13/pflag"
)

func main() {
	adminsPath := flag.String("admins", "data/admin.json", "Path to admin.json")
	username := flag.StringP("username", "u", "admin", "Administrator username")
	password := flag.StringP("password", "p", "", "Administrator password (required)")
	roleName := flag.StringP("role", "r", "admin", "Role (user, admin, superadmin)")
	force := flag.BoolP("force", "f", false, "Reset the password if the account already exists")
	flag.Parse()

	if *password == "" {
		fmt.Fprintln(os.Stderr, "error: --password is required")
		flag.Usage()
		os.Exit(2)
	}

	role, err := auth.ParseRole(*roleName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	if err := auth.ValidatePasswordStrength(*password); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	admins := store.NewAdminStore(*adminsPath)

	_, err = admins.Create(*username, *password, role)
	switch {
	case err == nil:
		fmt.Printf("Created administrator %q with role %s in %s\n", *username, role, *adminsPath)
	case errors.Is(err, store.ErrDuplicateUsername) && *force:
		if err := admins.Update(*username, *password, role); err != nil {
			fmt.Fprintf(os.Stderr, "error: failed to update %q: %v\n", *username, err)
			os.Exit(1)
		}
		fmt.Printf("Updated administrator %q in %s\n", *username, *adminsPath)
	case errors.Is(err, store.ErrDuplicateUsername):
		fmt.Fprintf(os.Stderr, "error: administrator %q already exists (use --force to reset)\n", *username)
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
