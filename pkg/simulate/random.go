package simulate

import (
	"fmt"
	"strconv"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/impressions"
)

var containerIDs = []string{
	"featured", "trending", "recently_added", "most_popular", "continue_watching",
	"comedy", "drama", "action", "horror", "documentary", "kids", "reality",
}

// RandomScript builds a browse session of screens page views. The same
// non-zero seed always produces the same script; seed 0 is random.
func RandomScript(screens int, seed uint64) *Script {
	f := gofakeit.New(seed)
	s := &Script{Name: fmt.Sprintf("random-%d", seed)}

	var at int64
	for screen := 0; screen < screens; screen++ {
		s.Steps = append(s.Steps, Step{AtMS: at, Action: ActionNavigate, Pathname: randomPathname(f)})

		personalization := f.UUID()
		rows := f.IntRange(1, 4)
		var visible []impressions.Impression
		for row := 0; row < rows; row++ {
			container := f.RandomString(containerIDs)
			cols := f.IntRange(3, 6)
			for col := 0; col < cols; col++ {
				visible = append(visible, impressions.Impression{
					ContentID:         strconv.Itoa(f.IntRange(100000, 999999)),
					ContainerID:       container,
					Row:               row,
					Col:               col,
					PersonalizationID: personalization,
					IsSeries:          f.Bool(),
				})
			}
		}
		s.Steps = append(s.Steps, Step{AtMS: at, Action: ActionStart, Impressions: visible})

		// Scrolling hides some tiles early; a few leave before they count.
		for _, imp := range visible {
			if f.IntRange(0, 3) != 0 {
				continue
			}
			at += int64(f.IntRange(200, 2500))
			s.Steps = append(s.Steps, Step{AtMS: at, Action: ActionEnd, Impressions: []impressions.Impression{imp}})
		}

		at += int64(f.IntRange(1500, 30000))
		s.Steps = append(s.Steps, Step{AtMS: at, Action: ActionEndAll})
		at += int64(f.IntRange(100, 1500))
	}
	return s
}

func randomPathname(f *gofakeit.Faker) string {
	switch f.IntRange(0, 5) {
	case 0:
		return "/"
	case 1:
		return "/category/" + f.RandomString(containerIDs)
	case 2:
		return "/movies/" + strconv.Itoa(f.IntRange(100000, 999999))
	case 3:
		return "/series/" + strconv.Itoa(f.IntRange(100000, 999999))
	case 4:
		return "/search/" + f.Word()
	default:
		return "/live"
	}
}
