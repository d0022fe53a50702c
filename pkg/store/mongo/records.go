package mongo

import (
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/rajithraghunath/roomtag/pkg/model"
)

// Collection names.
const (
	collDocuments = "documents"
	collRooms     = "rooms"
	collViews     = "views"
	collStyles    = "tag_styles"
	collLinks     = "links"
	collTags      = "room_tags"
)

// childCollections lists every per-document collection.
var childCollections = []string{collRooms, collViews, collStyles, collLinks, collTags}

// Child records carry the owning document and their position in it; reads
// sort by seq to keep document order.

type roomRecord struct {
	Seq        int `bson:"seq"`
	model.Room `bson:",inline"`
}

type viewRecord struct {
	Document   model.DocumentID `bson:"document"`
	Seq        int              `bson:"seq"`
	model.View `bson:",inline"`
}

type styleRecord struct {
	Document       model.DocumentID `bson:"document"`
	Seq            int              `bson:"seq"`
	model.TagStyle `bson:",inline"`
}

type linkRecord struct {
	Document            model.DocumentID `bson:"document"`
	Seq                 int              `bson:"seq"`
	model.LinkReference `bson:",inline"`
}

type tagRecord struct {
	Document      model.DocumentID `bson:"document"`
	Seq           int              `bson:"seq"`
	model.RoomTag `bson:",inline"`
}

// records splits a normalized document into its per-collection inserts.
func records(d model.DocumentData) map[string][]any {
	out := make(map[string][]any, len(childCollections))
	for i, r := range d.Rooms {
		out[collRooms] = append(out[collRooms], roomRecord{Seq: i, Room: r})
	}
	for i, v := range d.Views {
		out[collViews] = append(out[collViews], viewRecord{Document: d.ID, Seq: i, View: v})
	}
	for i, s := range d.Styles {
		out[collStyles] = append(out[collStyles], styleRecord{Document: d.ID, Seq: i, TagStyle: s})
	}
	for i, l := range d.Links {
		out[collLinks] = append(out[collLinks], linkRecord{Document: d.ID, Seq: i, LinkReference: l})
	}
	out[collTags] = tagRecords(d.ID, 0, d.Tags)
	return out
}

// tagRecords numbers tags from seq onwards.
func tagRecords(doc model.DocumentID, seq int, tags []model.RoomTag) []any {
	var out []any
	for i, t := range tags {
		out = append(out, tagRecord{Document: doc, Seq: seq + i, RoomTag: t})
	}
	return out
}

// tagFilter matches the records tagRecords(doc, seq, tags) produced.
func tagFilter(doc model.DocumentID, seq int, tags []model.RoomTag) bson.D {
	ids := lo.Map(tags, func(t model.RoomTag, _ int) model.ElementID { return t.ID })
	return bson.D{
		{Key: "document", Value: doc},
		{Key: "seq", Value: bson.D{{Key: "$gte", Value: seq}}},
		{Key: "id", Value: bson.D{{Key: "$in", Value: ids}}},
	}
}
