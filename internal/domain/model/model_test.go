package model_test

import (
	"encoding/json"
	"errors"
	"strconv"
	"testing"

	"github.com/okian/profilebridge/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func sampleProfile() model.UserProfile {
	return model.UserProfile{
		Provider:   model.Twitter,
		ProfileID:  "42",
		Username:   "jdoe",
		Email:      "jdoe@example.com",
		FirstName:  "John",
		LastName:   "Doe",
		AvatarLink: "https://example.com/a.png",
		Gender:     "male",
		Extra: map[string]any{
			"token":  "abc",
			"nested": map[string]any{"level": json.Number("3")},
			"fbId":   json.Number("9007199254740993"),
		},
	}
}

func sampleLeaderboard() model.Leaderboard {
	return model.Leaderboard{ID: "main", Provider: model.GameCenter, Name: "Main", IconURL: "https://example.com/i.png"}
}

func TestParseProvider(t *testing.T) {
	convey.Convey("Given provider text from the host", t, func() {
		convey.Convey("When it is a known name in any case", func() {
			p, err := model.ParseProvider(" Twitter ")
			convey.So(err, convey.ShouldBeNil)
			convey.So(p, convey.ShouldEqual, model.Twitter)
		})

		convey.Convey("When it is a decimal value", func() {
			p, err := model.ParseProvider("1")
			convey.So(err, convey.ShouldBeNil)
			convey.So(p, convey.ShouldEqual, model.Foursquare)
		})

		convey.Convey("When it is not a provider", func() {
			for _, in := range []string{"not-a-provider", "", "99", "-1"} {
				_, err := model.ParseProvider(in)
				convey.So(errors.Is(err, model.ErrUnknownProvider), convey.ShouldBeTrue)
			}
		})

		convey.Convey("Then every provider resolves from its own name and value", func() {
			for _, p := range model.Providers() {
				byName, err := model.ParseProvider(p.String())
				convey.So(err, convey.ShouldBeNil)
				convey.So(byName, convey.ShouldEqual, p)

				byValue, err := model.ParseProvider(strconv.Itoa(int(p)))
				convey.So(err, convey.ShouldBeNil)
				convey.So(byValue, convey.ShouldEqual, p)
			}
		})
	})
}

func TestParseSocialActionType(t *testing.T) {
	convey.Convey("Given social action type text", t, func() {
		for _, at := range model.SocialActionTypes() {
			got, err := model.ParseSocialActionType(at.String())
			convey.So(err, convey.ShouldBeNil)
			convey.So(got, convey.ShouldEqual, at)
		}

		got, err := model.ParseSocialActionType("invite")
		convey.So(err, convey.ShouldBeNil)
		convey.So(got, convey.ShouldEqual, model.Invite)

		got, err = model.ParseSocialActionType("3")
		convey.So(err, convey.ShouldBeNil)
		convey.So(got, convey.ShouldEqual, model.GetContacts)

		_, err = model.ParseSocialActionType("POKE")
		convey.So(errors.Is(err, model.ErrUnknownSocialActionType), convey.ShouldBeTrue)
	})
}

func TestUserProfileRoundTrip(t *testing.T) {
	convey.Convey("Given a user profile", t, func() {
		in := sampleProfile()

		convey.Convey("When it is encoded and decoded", func() {
			data, err := model.EncodeProfile(in)
			convey.So(err, convey.ShouldBeNil)

			out, err := model.DecodeProfile(data)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then it is unchanged", func() {
				convey.So(out, convey.ShouldResemble, in)
			})
		})

		convey.Convey("When the provider is encoded", func() {
			data, err := model.EncodeProfile(in)
			convey.So(err, convey.ShouldBeNil)

			var raw map[string]any
			convey.So(json.Unmarshal(data, &raw), convey.ShouldBeNil)
			convey.So(raw["provider"], convey.ShouldEqual, "5")
			convey.So(raw["id"], convey.ShouldEqual, "42")
			_, hasLocation := raw["location"]
			convey.So(hasLocation, convey.ShouldBeFalse)
		})
	})

	convey.Convey("Given profile text from the host", t, func() {
		convey.Convey("When the provider is numeric", func() {
			u, err := model.DecodeProfile([]byte(`{"id":"42","provider":0,"extra":{"k":"v"}}`))
			convey.So(err, convey.ShouldBeNil)
			convey.So(u.Provider, convey.ShouldEqual, model.Facebook)
			convey.So(u.Extra["k"], convey.ShouldEqual, "v")
		})

		convey.Convey("When extra holds numbers beyond float64 precision", func() {
			in := `{"provider":"5","id":"42","extra":{"fbId":9007199254740993,"ratio":0.1000000000000000055511151231257827}}`
			u, err := model.DecodeProfile([]byte(in))
			convey.So(err, convey.ShouldBeNil)
			convey.So(u.Extra["fbId"], convey.ShouldEqual, json.Number("9007199254740993"))

			data, err := model.EncodeProfile(u)
			convey.So(err, convey.ShouldBeNil)
			convey.So(string(data), convey.ShouldContainSubstring, `"fbId":9007199254740993`)
			convey.So(string(data), convey.ShouldContainSubstring, `"ratio":0.1000000000000000055511151231257827`)
		})

		convey.Convey("When trailing text follows the object", func() {
			_, err := model.DecodeProfile([]byte(`{"id":"42","provider":"google"} {}`))
			convey.So(errors.Is(err, model.ErrInvalidRecord), convey.ShouldBeTrue)
		})

		convey.Convey("When the provider is a name", func() {
			u, err := model.DecodeProfile([]byte(`{"id":"42","provider":"google"}`))
			convey.So(err, convey.ShouldBeNil)
			convey.So(u.Provider, convey.ShouldEqual, model.Google)
		})

		convey.Convey("When required fields are missing or wrong", func() {
			for _, in := range []string{
				`{"id":"42"}`,
				`{"provider":"1"}`,
				`{"id":"42","provider":"nope"}`,
				`not-json`,
				`[]`,
			} {
				_, err := model.DecodeProfile([]byte(in))
				convey.So(errors.Is(err, model.ErrInvalidRecord), convey.ShouldBeTrue)
			}
		})

		convey.Convey("When the profile itself is invalid it cannot be encoded", func() {
			_, err := model.EncodeProfile(model.UserProfile{Provider: model.Google})
			convey.So(errors.Is(err, model.ErrInvalidRecord), convey.ShouldBeTrue)
		})
	})
}

func TestLeaderboardRoundTrip(t *testing.T) {
	convey.Convey("Given a leaderboard", t, func() {
		in := sampleLeaderboard()

		data, err := model.EncodeLeaderboard(in)
		convey.So(err, convey.ShouldBeNil)
		convey.So(string(data), convey.ShouldContainSubstring, `"itemId":"main"`)

		out, err := model.DecodeLeaderboard(data)
		convey.So(err, convey.ShouldBeNil)
		convey.So(out, convey.ShouldResemble, in)

		convey.Convey("When the id is missing", func() {
			_, err := model.DecodeLeaderboard([]byte(`{"provider":"12"}`))
			convey.So(errors.Is(err, model.ErrInvalidRecord), convey.ShouldBeTrue)
		})
	})
}

func TestScoreRoundTrip(t *testing.T) {
	convey.Convey("Given a score", t, func() {
		in := model.Score{
			Leaderboard: sampleLeaderboard(),
			Player:      sampleProfile(),
			Rank:        3,
			Value:       1 << 40,
		}

		data, err := model.EncodeScore(in)
		convey.So(err, convey.ShouldBeNil)

		out, err := model.DecodeScore(data)
		convey.So(err, convey.ShouldBeNil)
		convey.So(out, convey.ShouldResemble, in)

		convey.Convey("When nested records are missing", func() {
			_, err := model.DecodeScore([]byte(`{"rank":1,"value":10}`))
			convey.So(errors.Is(err, model.ErrInvalidRecord), convey.ShouldBeTrue)

			_, err = model.DecodeScore([]byte(`{"leaderboard":{"itemId":"x","provider":"1"},"userProfile":{"provider":"1"}}`))
			convey.So(errors.Is(err, model.ErrInvalidRecord), convey.ShouldBeTrue)
		})
	})
}
