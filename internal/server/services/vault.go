package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/drivenpass/internal/common"
)

// FieldCipher encrypts the sensitive string fields of vault records.
type FieldCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// resource names a vault collection in caller-facing messages.
type resource struct {
	name  string // "credential"
	title string // "Credential"
}

var (
	credentialResource = resource{name: "credential", title: "Credential"}
	cardResource       = resource{name: "card", title: "Card"}
	noteResource       = resource{name: "note", title: "Note"}
)

func (r resource) errTitleTaken() error {
	return common.NewError(common.ErrorConflict,
		fmt.Sprintf("This %s title is already in use in your collection!", r.name))
}

func (r resource) errNotFound() error {
	return common.NewError(common.ErrorNotFound, fmt.Sprintf("%s doesn't exist!", r.title))
}

func (r resource) errNotOwned() error {
	return common.NewError(common.ErrorForbidden,
		fmt.Sprintf("This %s doesn't exist in your collection!", r.name))
}

// ensureTitleFree rejects a title the owner already uses in this collection.
func ensureTitleFree(ctx context.Context, r resource, ownerID int64, title string,
	exists func(ctx context.Context, userID int64, title string) (bool, error)) error {

	taken, err := exists(ctx, ownerID, title)
	if err != nil {
		return fmt.Errorf("error checking %s title: %w", r.name, err)
	}
	if taken {
		return r.errTitleTaken()
	}
	return nil
}

// createErr maps a repository Create failure. The unique constraint catches
// a concurrent insert that slipped past ensureTitleFree.
func createErr(r resource, err error) error {
	if errors.Is(err, common.ErrorConflict) {
		return r.errTitleTaken()
	}
	return fmt.Errorf("error creating %s: %w", r.name, err)
}

// findOwned loads a record and checks it belongs to ownerID. A missing row
// is NotFound for every caller; somebody else's row is Forbidden.
func findOwned[T any](ctx context.Context, r resource, id, ownerID int64,
	find func(ctx context.Context, id int64) (T, error), owner func(T) int64) (T, error) {

	var zero T

	v, err := find(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return zero, r.errNotFound()
		}
		return zero, fmt.Errorf("error loading %s: %w", r.name, err)
	}

	if owner(v) != ownerID {
		return zero, r.errNotOwned()
	}
	return v, nil
}

// removeErr maps a Delete failure after findOwned succeeded; a row that
// vanished in between reads as NotFound.
func removeErr(r resource, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return r.errNotFound()
	}
	return fmt.Errorf("error deleting %s: %w", r.name, err)
}

func decryptErr(r resource, id int64, err error) error {
	return fmt.Errorf("error decrypting %s %d: %w", r.name, id, err)
}
