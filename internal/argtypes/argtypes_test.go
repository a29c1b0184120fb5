package argtypes

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/textcmd/pkg/cmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	guildID = "111111111111111111"
	bobID   = "222222222222222222"
	modID   = "333333333333333333"
	chanID  = "444444444444444444"
)

const fixture = `
guilds:
  "111111111111111111":
    members:
      - {id: "222222222222222222", username: bob, nick: Bobby, roles: ["333333333333333333"]}
      - {id: "555555555555555555", username: alice}
    roles:
      - {id: "333333333333333333", name: Moderator}
    channels:
      - {id: "444444444444444444", name: general}
`

type scope string

func (s scope) GuildID() string { return string(s) }

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	dir, err := ParseStaticDirectory([]byte(fixture))
	require.NoError(t, err)
	r := NewRegistry()
	r.RegisterEntities(dir)
	return r
}

func TestScalarTypes(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	ctx := context.Background()

	tests := []struct {
		typ      string
		raw      string
		want     any
		rejected bool
	}{
		{typ: TypeString, raw: "hi there", want: "hi there"},
		{typ: TypeInt, raw: "-42", want: -42},
		{typ: TypeInt, raw: "4.2", rejected: true},
		{typ: TypeFloat, raw: "4,5", want: 4.5},
		{typ: TypeFloat, raw: "NaN", rejected: true},
		{typ: TypeBool, raw: "Yes", want: true},
		{typ: TypeBool, raw: "off", want: false},
		{typ: TypeBool, raw: "maybe", rejected: true},
		{typ: TypeDuration, raw: "90s", want: 90 * time.Second},
		{typ: TypeDuration, raw: "2d", want: 48 * time.Hour},
		{typ: TypeDuration, raw: "1w1d12h", want: 8*24*time.Hour + 12*time.Hour},
		{typ: TypeDuration, raw: "soon", rejected: true},
		{typ: TypeDuration, raw: "", rejected: true},
		{typ: TypeURL, raw: "ftp://example.com", rejected: true},
		{typ: TypeURL, raw: "example.com", rejected: true},
	}

	for _, tt := range tests {
		t.Run(tt.typ+"/"+tt.raw, func(t *testing.T) {
			t.Parallel()
			got, err := r.ParseArg(ctx, tt.raw, cmd.Param{Name: "x", Type: tt.typ}, nil)
			if tt.rejected {
				assert.True(t, cmd.IsRejection(err), "want rejection, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestURLType(t *testing.T) {
	t.Parallel()

	got, err := NewRegistry().ParseArg(context.Background(), "<https://example.com/a?b=c>", cmd.Param{Name: "link", Type: TypeURL}, nil)
	require.NoError(t, err)
	u, ok := got.(*url.URL)
	require.True(t, ok)
	assert.Equal(t, "example.com", u.Host)
	assert.Equal(t, "/a", u.Path)
}

func TestUnknownType(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry().ParseArg(context.Background(), "x", cmd.Param{Name: "x", Type: "weird"}, nil)
	require.Error(t, err)
	assert.False(t, cmd.IsRejection(err))
}

func TestEntityTypes(t *testing.T) {
	t.Parallel()

	r := testRegistry(t)
	ctx := context.Background()
	in := scope(guildID)

	parse := func(typ, raw string, data any) (any, error) {
		return r.ParseArg(ctx, raw, cmd.Param{Name: "x", Type: typ}, data)
	}

	v, err := parse(TypeUser, "<@!"+bobID+">", nil)
	require.NoError(t, err)
	assert.Equal(t, "bob", v.(*discordgo.User).Username)

	_, err = parse(TypeUser, "bob", nil)
	assert.True(t, cmd.IsRejection(err))

	_, err = parse(TypeUser, "<@999999999999999999>", nil)
	assert.True(t, cmd.IsRejection(err))

	v, err = parse(TypeMember, bobID, in)
	require.NoError(t, err)
	assert.Equal(t, "Bobby", v.(*discordgo.Member).Nick)

	v, err = parse(TypeMember, "bobby", in)
	require.NoError(t, err)
	assert.Equal(t, bobID, v.(*discordgo.Member).User.ID)

	_, err = parse(TypeMember, "bo", in)
	assert.True(t, cmd.IsRejection(err))

	_, err = parse(TypeMember, bobID, nil)
	assert.True(t, cmd.IsRejection(err), "members need a guild")

	v, err = parse(TypeRole, "<@&"+modID+">", in)
	require.NoError(t, err)
	assert.Equal(t, "Moderator", v.(*discordgo.Role).Name)

	v, err = parse(TypeRole, "moderator", in)
	require.NoError(t, err)
	assert.Equal(t, modID, v.(*discordgo.Role).ID)

	_, err = parse(TypeRole, "admin", in)
	assert.True(t, cmd.IsRejection(err))

	v, err = parse(TypeChannel, "<#"+chanID+">", in)
	require.NoError(t, err)
	assert.Equal(t, "general", v.(*discordgo.Channel).Name)

	v, err = parse(TypeChannel, "#General", in)
	require.NoError(t, err)
	assert.Equal(t, chanID, v.(*discordgo.Channel).ID)

	_, err = parse(TypeRole, "moderator", scope("999999999999999999"))
	assert.True(t, cmd.IsRejection(err), "unknown guild is not found")
}

type failingDirectory struct {
	*StaticDirectory
	err error
}

func (f failingDirectory) Roles(context.Context, string) ([]*discordgo.Role, error) {
	return nil, f.err
}

func (f failingDirectory) Member(context.Context, string, string) (*discordgo.Member, error) {
	return nil, f.err
}

func TestEntityTypesPropagateDirectoryFailures(t *testing.T) {
	t.Parallel()

	boom := errors.New("discord unavailable")
	r := NewRegistry()
	r.RegisterEntities(failingDirectory{StaticDirectory: &StaticDirectory{}, err: boom})

	_, err := r.ParseArg(context.Background(), "mod", cmd.Param{Name: "x", Type: TypeRole}, scope(guildID))
	require.ErrorIs(t, err, boom)
	assert.False(t, cmd.IsRejection(err))

	_, err = r.ParseArg(context.Background(), bobID, cmd.Param{Name: "x", Type: TypeMember}, scope(guildID))
	require.ErrorIs(t, err, boom)
}

func TestEntityTypesInsideParser(t *testing.T) {
	t.Parallel()

	r := testRegistry(t)
	params := []cmd.Param{
		{Name: "member", Type: TypeMember},
		{Name: "roles", Type: TypeRole, Repeatable: true},
	}
	body := `bob <@&` + modID + `> Moderator`
	res, err := (&cmd.Parser{Types: r}).Parse(context.Background(), body, cmd.Tokenize(body, cmd.DefaultQuotes), params, scope(guildID))
	require.NoError(t, err)
	require.True(t, res.OK())
	assert.Len(t, cmd.ListOf[*discordgo.Role](res.Args, "roles"), 2)
}

func TestCheck(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	reg := cmd.NewRegistry()
	reg.Register(&stubCommand{params: []cmd.Param{{Name: "who", Type: TypeMember}}})
	require.Error(t, r.Check(reg.Commands()))

	r.RegisterEntities(&StaticDirectory{})
	require.NoError(t, r.Check(reg.Commands()))
}

type stubCommand struct {
	params []cmd.Param
}

func (c *stubCommand) Name() string                               { return "stub" }
func (c *stubCommand) Description() string                        { return "" }
func (c *stubCommand) Usages() []cmd.Usage                        { return []cmd.Usage{{Invoke: "stub"}} }
func (c *stubCommand) Params() []cmd.Param                        { return c.params }
func (c *stubCommand) Run(context.Context, *cmd.Invocation) error { return nil }
