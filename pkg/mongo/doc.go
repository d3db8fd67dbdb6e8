// Package mongo connects to MongoDB and holds small helpers shared by the
// document stores.
//
// Connect and ConnectDatabase retry the initial ping up to
// Config.RetryAttempts times, then hand back a ready *mongo.Client or
// *mongo.Database from the official v2 driver:
//
//	db, err := mongo.ConnectDatabase(ctx, cfg)
//	if err != nil {
//		return err
//	}
//
// The helpers translate driver errors into questions stores care about:
// IsNotFound, IsDuplicateKey and DuplicateKeyIndex, which names the unique
// index a write collided on so a store can tell "email taken" from
// "username taken". FindPage turns pagination.Params into find options and
// ParseID validates hex object ids.
package mongo
