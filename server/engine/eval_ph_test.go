package engine

import "testing"

func TestDescribe(t *testing.T) {
	short, err := Describe(FromCards(MustParseCards("As Kd")...))
	if err != nil {
		t.Fatal(err)
	}
	if short.Desc != "" || short.String() != "2 cards" {
		t.Fatalf("two-card hand = %q", short)
	}

	flush, err := Describe(FromCards(MustParseCards("2h 5h 9h Jh Kh 3c As")...))
	if err != nil {
		t.Fatal(err)
	}
	if flush.Cards != 7 || flush.Desc == "" {
		t.Fatalf("seven-card hand = %+v", flush)
	}

	pair, err := Describe(FromCards(MustParseCards("2c 2d 7s 9h Jd")...))
	if err != nil {
		t.Fatal(err)
	}
	if pair.Score >= flush.Score {
		t.Fatalf("pair score %d should rank below flush %d", pair.Score, flush.Score)
	}
}

func TestDescribeJoker(t *testing.T) {
	if _, err := Describe(FromCards(MustParseCards("As Kj Qs")...)); err == nil {
		t.Fatalf("expected error for joker")
	}
}

func TestDescribeFourCardsUsesBestThree(t *testing.T) {
	tests := []struct {
		stronger, weaker string
	}{
		{"9c 4s 5h 9d", "2s 3d 6c Kh"}, // pair of nines over king high
		{"Kh 9c 2s 3d", "Qs Jd 9h 2c"}, // king high over queen high
		{"7c 7d 2s 7h", "As Ad Kc"},    // trips over a pair
	}
	for _, tt := range tests {
		a, err := Describe(FromCards(MustParseCards(tt.stronger)...))
		if err != nil {
			t.Fatal(err)
		}
		b, err := Describe(FromCards(MustParseCards(tt.weaker)...))
		if err != nil {
			t.Fatal(err)
		}
		if a.Score <= b.Score {
			t.Fatalf("%s (%s, %d) should outrank %s (%s, %d)", tt.stronger, a.Desc, a.Score, tt.weaker, b.Desc, b.Score)
		}
	}
}

func TestDescribeSubsetOrderIrrelevant(t *testing.T) {
	a, err := Describe(FromCards(MustParseCards("9c 9d 4s 5h")...))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Describe(FromCards(MustParseCards("4s 5h 9c 9d")...))
	if err != nil {
		t.Fatal(err)
	}
	if a.Score != b.Score {
		t.Fatalf("order changed the rating: %d vs %d", a.Score, b.Score)
	}
}
