package mongo

import (
	"context"
	"time"

	"github.com/airenas/listreview/internal/pkg/cmdapp"
	"github.com/airenas/listreview/internal/pkg/persistence"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SnapshotStore keeps the whole review state as one mongo document.
// A single document replace makes every save atomic.
type SnapshotStore struct {
	SessionProvider *SessionProvider
}

type stateRecord struct {
	ID            string                      `bson:"_id"`
	Jobs          []*persistence.Job          `bson:"jobs"`
	Locks         []*persistence.Lock         `bson:"locks"`
	Notifications []*persistence.Notification `bson:"notifications"`
	SavedAt       time.Time                   `bson:"savedAt"`
}

//NewSnapshotStore creates SnapshotStore instance
func NewSnapshotStore(sessionProvider *SessionProvider) (*SnapshotStore, error) {
	if sessionProvider == nil {
		return nil, errors.New("No session provider")
	}
	return &SnapshotStore{SessionProvider: sessionProvider}, nil
}

//Load reads the stored state, empty state if nothing is saved yet
func (ss *SnapshotStore) Load(ctx context.Context) (*persistence.Snapshot, error) {
	c, session, err := ss.coll()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(context.Background())
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var r stateRecord
	err = c.FindOne(ctx, bson.M{"_id": stateID}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		cmdapp.Log.Info("No saved state")
		return &persistence.Snapshot{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "Can't read state")
	}
	return &persistence.Snapshot{Jobs: r.Jobs, Locks: r.Locks, Notifications: r.Notifications}, nil
}

//Save replaces the stored state
func (ss *SnapshotStore) Save(ctx context.Context, s *persistence.Snapshot) error {
	c, session, err := ss.coll()
	if err != nil {
		return err
	}
	defer session.EndSession(context.Background())
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	r := stateRecord{ID: stateID, Jobs: s.Jobs, Locks: s.Locks, Notifications: s.Notifications,
		SavedAt: time.Now()}
	_, err = c.ReplaceOne(ctx, bson.M{"_id": stateID}, r, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(err, "Can't save state")
	}
	cmdapp.Log.Debugf("Saved state: jobs %d, locks %d", len(s.Jobs), len(s.Locks))
	return nil
}

func (ss *SnapshotStore) coll() (*mongo.Collection, mongo.Session, error) {
	session, err := ss.SessionProvider.NewSession()
	if err != nil {
		return nil, nil, err
	}
	return session.Client().Database(store).Collection(stateTable), session, nil
}
