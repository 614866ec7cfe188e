package mongo

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// withTransaction runs fn inside a multi-document transaction when the
// deployment supports one. Standalone servers cannot open transactions; the
// caller detects that via IsTxnNotSupported and falls back to its
// sequential path.
func withTransaction(ctx context.Context, client *mongo.Client, fn func(sc mongo.SessionContext) (any, error)) error {
	session, err := client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, fn)
	return err
}

// IsTxnNotSupported reports whether err indicates the deployment cannot run
// multi-document transactions (standalone server, old wire version).
func IsTxnNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		switch cmdErr.Code {
		case 20, 51, 263: // IllegalOperation variants raised on standalone servers
			return true
		}
		return false
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "illegal operation") {
		return true
	}
	if strings.Contains(msg, "transaction") &&
		(strings.Contains(msg, "replica set") || strings.Contains(msg, "session") || strings.Contains(msg, "not supported")) {
		return true
	}
	if strings.Contains(msg, "session") && strings.Contains(msg, "not supported") {
		return true
	}
	return false
}
