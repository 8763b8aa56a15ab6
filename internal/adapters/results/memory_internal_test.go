package results

import (
	"context"
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/cricksim/internal/domain/model"
)

func TestTreapShape(t *testing.T) {
	Convey("Given priorities that would degrade a naive tree", t, func() {
		var p uint64
		l := NewMemoryLedger(withPriorities(func() uint64 { p++; return p }))
		ctx := context.Background()
		for i := 0; i < 50; i++ {
			So(l.Record(ctx, model.Result{MatchID: fmt.Sprintf("m%02d", i), FirstRuns: i, ChaseRuns: 100 + i}), ShouldBeNil)
		}

		Convey("Then sizes stay consistent", func() {
			So(nsize(l.root), ShouldEqual, 100)
			So(checkSizes(l.root), ShouldBeTrue)
		})

		Convey("Then deletes keep order", func() {
			worst, ok := last(l.root)
			So(ok, ShouldBeTrue)
			So(worst.Runs, ShouldEqual, 0)
			l.root = deleteNode(l.root, worst)
			worst, _ = last(l.root)
			So(worst.Runs, ShouldEqual, 1)
			So(nsize(l.root), ShouldEqual, 99)

			top, err := l.Top(ctx, 3)
			So(err, ShouldBeNil)
			So(top[0].Runs, ShouldEqual, 149)
			So(top[2].Runs, ShouldEqual, 147)
		})
	})
}

func checkSizes(n *node) bool {
	if n == nil {
		return true
	}
	return n.size == 1+nsize(n.left)+nsize(n.right) && checkSizes(n.left) && checkSizes(n.right)
}
