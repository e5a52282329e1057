package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/evolveua/queuevault/internal/client/users"
	"github.com/evolveua/queuevault/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for the profile fields and creates a new account.
//
// On success it prints "Success!" and returns nil. The password byte slice
// is securely wiped before returning. Any I/O or service error is returned
// unchanged.
func (a *App) Register(ctx context.Context) error {
	fullName, err := getSimpleText(a.reader, "Enter full name", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	phone, err := getSimpleText(a.reader, "Enter phone", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	_, err = a.auth.Register(ctx, users.NewUserParams{
		FullName: fullName,
		Email:    email,
		Phone:    phone,
		Password: string(password),
	})
	if err != nil {
		log.Printf("Registration unsuccessful: %s", err.Error())
		return err
	}

	fmt.Println("Success! You can now log in.")
	return nil
}

// Login prompts for credentials and authenticates. On success the session,
// including the freshly derived encryption key, is kept on the App for the
// rest of the REPL run.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	sess, err := a.auth.Login(ctx, email, string(password))
	if err != nil {
		log.Printf("Login unsuccessful: %s", err.Error())
		return err
	}

	a.sess = sess
	log.Printf("Login successful")
	return nil
}

// Logout invalidates the session and destroys the in-memory key.
func (a *App) Logout(ctx context.Context) error {
	if a.sess == nil {
		return nil
	}
	if err := a.auth.Logout(ctx, a.sess); err != nil {
		return err
	}
	a.sess = nil
	fmt.Println("Logged out")
	return nil
}
