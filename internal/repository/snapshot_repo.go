package repository

import (
	"context"
	"time"

	"report-dashboard/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SnapshotRepository 本地快取層
// 只存「最新一份」快照與使用者座標，各一筆固定 _id 的文件
// 呼叫端要把這裡的錯誤當作非致命 (log 後繼續跑，降級為無快取模式)
type SnapshotRepository interface {
	SaveSnapshot(ctx context.Context, snap domain.Snapshot) error
	LoadSnapshot(ctx context.Context) (*domain.Snapshot, error)

	SaveLocation(ctx context.Context, loc domain.LocationSettings) error
	GetLocation(ctx context.Context) (*domain.LocationSettings, error)
}

const (
	docIDSnapshot = "latest_snapshot"
	docIDLocation = "location"
)

type mongoSnapshotRepo struct {
	collection *mongo.Collection
}

func NewMongoSnapshotRepo(db *mongo.Database) SnapshotRepository {
	return &mongoSnapshotRepo{
		collection: db.Collection("dashboard"),
	}
}

// SaveSnapshot 覆寫最新快照 (upsert，永遠只有一筆)
func (r *mongoSnapshotRepo) SaveSnapshot(ctx context.Context, snap domain.Snapshot) error {
	filter := bson.M{"_id": docIDSnapshot}

	update := bson.M{
		"$set": bson.M{
			"stats":      snap.Stats,
			"seq":        snap.Seq,
			"fetched_at": snap.FetchedAt,
			"updated_at": time.Now(),
		},
	}

	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// LoadSnapshot 讀取最新快照；沒有資料回 (nil, nil)，不算錯誤
func (r *mongoSnapshotRepo) LoadSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	err := r.collection.FindOne(ctx, bson.M{"_id": docIDSnapshot}).Decode(&snap)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (r *mongoSnapshotRepo) SaveLocation(ctx context.Context, loc domain.LocationSettings) error {
	filter := bson.M{"_id": docIDLocation}

	update := bson.M{
		"$set": bson.M{
			"lat":        loc.Lat,
			"lng":        loc.Lng,
			"updated_at": time.Now(),
		},
	}

	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

func (r *mongoSnapshotRepo) GetLocation(ctx context.Context) (*domain.LocationSettings, error) {
	var loc domain.LocationSettings
	err := r.collection.FindOne(ctx, bson.M{"_id": docIDLocation}).Decode(&loc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &loc, nil
}
