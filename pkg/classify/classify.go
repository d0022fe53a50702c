// Package classify partitions a document's rooms by whether a label already
// references them.
//
// Classification is a pure function of a snapshot: it never reads from a host
// and never mutates its inputs. Rooms are matched to labels by their
// document-qualified identity ([model.RoomRef]); a label referencing a room
// that is not in the input set is ignored.
package classify

import (
	"github.com/samber/lo"

	"github.com/rajithraghunath/roomtag/pkg/model"
)

// Result is the outcome of classifying one document's rooms.
// Labeled and Unlabeled partition Rooms and keep its order.
type Result struct {
	Rooms     []model.Room
	Labeled   []model.Room
	Unlabeled []model.Room
}

// Classify splits rooms into those referenced by at least one tag and the rest.
// Empty inputs yield an empty result.
func Classify(rooms []model.Room, tags []model.RoomTag) Result {
	referenced := Referenced(tags)
	labeled, unlabeled := lo.FilterReject(rooms, func(r model.Room, _ int) bool {
		_, ok := referenced[r.Ref()]
		return ok
	})
	return Result{
		Rooms:     rooms,
		Labeled:   labeled,
		Unlabeled: unlabeled,
	}
}

// Referenced returns the set of rooms the given tags point at.
func Referenced(tags []model.RoomTag) map[model.RoomRef]struct{} {
	return lo.SliceToMap(tags, func(t model.RoomTag) (model.RoomRef, struct{}) {
		return t.Room, struct{}{}
	})
}

// Taggable keeps the rooms that are placed, bounded and on a level.
func Taggable(rooms []model.Room) []model.Room {
	return lo.Filter(rooms, func(r model.Room, _ int) bool {
		return r.Taggable()
	})
}

// Candidates returns the taggable rooms that no tag references yet.
func Candidates(rooms []model.Room, tags []model.RoomTag) []model.Room {
	return Taggable(Classify(rooms, tags).Unlabeled)
}
