package readings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/riverlabs/rivergauge/internal/models"
	"github.com/riverlabs/rivergauge/internal/store"
	"gorm.io/datatypes"
)

// storageTimeout bounds every store call made while processing a stream
// message, so a stuck backend fails the message for redelivery instead of
// wedging the consumer loop.
const storageTimeout = 5 * time.Second

// HandleReading returns the ingest handler: readings for registered machines
// are stored with their raw payload; readings for unknown machine codes are
// dropped, since a sensor must be registered before its data is retained.
func HandleReading(machines store.MachineStore, readings store.ReadingStore) func(context.Context, ReadingMessage, []byte) error {
	return func(ctx context.Context, msg ReadingMessage, raw []byte) error {
		ctx, cancel := context.WithTimeout(ctx, storageTimeout)
		defer cancel()

		_, err := machines.FindByCode(ctx, msg.MachineCode)
		if errors.Is(err, store.ErrNotFound) {
			slog.Warn("Dropping reading for unregistered machine", "machine_code", msg.MachineCode)
			return nil
		}
		if err != nil {
			// Storage error - retryable
			return fmt.Errorf("failed to look up machine: %w", err)
		}

		reading := models.Reading{
			MachineCode: msg.MachineCode,
			DepthCM:     msg.DepthCM,
			RainfallMM:  msg.RainfallMM,
			VelocityMS:  msg.VelocityMS,
			RecordedAt:  msg.RecordedAt,
			Payload:     datatypes.JSON(raw),
		}

		if err := readings.Insert(ctx, &reading); err != nil {
			return fmt.Errorf("failed to store reading: %w", err)
		}

		return nil
	}
}
