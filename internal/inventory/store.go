package inventory

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// Store persists the whole Document. Load never reports a corrupt document
// as an error; it resets to the default seed instead.
type Store interface {
	Load(ctx context.Context) (Document, error)
	Save(ctx context.Context, d Document) error
	Ping(ctx context.Context) error
}

func encodeDocument(d Document) ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// decodeOrReset normalizes persisted bytes, or writes the default seed back
// through save when they do not parse.
func decodeOrReset(ctx context.Context, log *zap.Logger, source string, data []byte, save func(context.Context, Document) error) (Document, error) {
	raw, err := ParseRaw(data)
	if err == nil {
		return Normalize(raw), nil
	}

	log.Error("inventory document unreadable, resetting to defaults",
		zap.String("source", source),
		zap.Error(err),
	)
	d := DefaultDocument()
	if err := save(ctx, d); err != nil {
		return Document{}, err
	}
	return d, nil
}
