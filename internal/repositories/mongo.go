package repositories

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Collection names, one per entity.
const (
	CollectionUsers         = "users"
	CollectionVideos        = "videos"
	CollectionComments      = "comments"
	CollectionLikes         = "likes"
	CollectionSubscriptions = "subscriptions"
	CollectionPlaylists     = "playlists"
	CollectionTweets        = "tweets"
)

// ownerLookup joins the owning user onto a document set and flattens the
// result into a single ownerDetails object.
func ownerLookup(localField string) []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: CollectionUsers},
			{Key: "localField", Value: localField},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "ownerDetails"},
		}}},
		{{Key: "$unwind", Value: "$ownerDetails"}},
		{{Key: "$project", Value: bson.D{
			{Key: "ownerDetails.password", Value: 0},
			{Key: "ownerDetails.refreshToken", Value: 0},
			{Key: "ownerDetails.watchHistory", Value: 0},
		}}},
	}
}

func isDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
