package configfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/galapa/internal/codec"
	"github.com/mcoot/galapa/internal/model"
)

type StoreSuite struct {
	suite.Suite
	dir string
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.dir = s.T().TempDir()
}

func (s *StoreSuite) TestPathIsObfuscated() {
	store := New(s.dir, "KeyConfigFile.xml", 0x11, codec.Fixed(), "")
	s.Equal(filepath.Join(s.dir, "FbrBrpgbkOhwj!ouc"), store.Path())
}

func (s *StoreSuite) TestEnsureCreatedWritesEncodedDefaults() {
	store := New(s.dir, PlayerListName, PlayerListSeed, codec.Username("emma"), DefaultPlayerList)
	s.Require().NoError(store.EnsureCreated())

	onDisk, err := os.ReadFile(filepath.Join(s.dir, "cxjYxsgheGzie!iyx"))
	s.Require().NoError(err)
	key := codec.UsernameKey("emma")
	expected, err := codec.Transform([]byte(DefaultPlayerList), key[:])
	s.Require().NoError(err)
	s.Equal(expected, onDisk)

	raw, err := store.ReadRaw()
	s.Require().NoError(err)
	s.Equal(DefaultPlayerList, string(raw))
}

func (s *StoreSuite) TestEnsureCreatedKeepsExistingFile() {
	store := New(s.dir, "KeyConfigFile.xml", 0x11, codec.Fixed(), "<Default/>")
	s.Require().NoError(store.WriteRaw([]byte("<Existing/>")))
	s.Require().NoError(store.EnsureCreated())

	raw, err := store.ReadRaw()
	s.Require().NoError(err)
	s.Equal("<Existing/>", string(raw))
}

func (s *StoreSuite) TestWriteRawTruncates() {
	store := New(s.dir, "KeyConfigFile.xml", 0x11, codec.Fixed(), "")
	s.Require().NoError(store.WriteRaw([]byte("a much longer first document")))
	s.Require().NoError(store.WriteRaw([]byte("short")))

	raw, err := store.ReadRaw()
	s.Require().NoError(err)
	s.Equal("short", string(raw))
}

func (s *StoreSuite) TestLoadUnparsableDocumentIsInvalidConfig() {
	store := New(s.dir, "KeyConfigFile.xml", 0x11, codec.Fixed(), "")
	s.Require().NoError(store.WriteRaw([]byte("not xml at all <")))

	_, err := store.Load()
	s.ErrorIs(err, model.ErrInvalidConfig)

	var invalid *model.InvalidConfigError
	s.Require().True(errors.As(err, &invalid))
	s.Equal("not xml at all <", invalid.Contents)
	s.Equal(store.Path(), invalid.Path)
}

func (s *StoreSuite) TestSaveAppliesClientFixups() {
	store := New(s.dir, "KeyConfigFile.xml", 0x11, codec.Fixed(), "")
	root := &Node{Name: "Root", Children: []*Node{NewNode("Key", "Id", "1", "Value", `a"b`)}}
	s.Require().NoError(store.Save(root))

	raw, err := store.ReadRaw()
	s.Require().NoError(err)
	expected := "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n" +
		"<Root>\n" +
		"\t<Key Id=\"1\" Value=\"a&quot;b\"/>\n" +
		"</Root>\n"
	s.Equal(expected, string(raw))
}

type DocumentSuite struct {
	suite.Suite
}

func TestDocumentSuite(t *testing.T) {
	suite.Run(t, new(DocumentSuite))
}

func (s *DocumentSuite) TestParseKeepsAttributeOrder() {
	root, err := ParseDocument([]byte(`<A><B z="1" a="2"/><C/></A>`))
	s.Require().NoError(err)

	s.Equal("A", root.Name)
	s.Require().Len(root.Children, 2)
	s.Equal([]Attr{{Name: "z", Value: "1"}, {Name: "a", Value: "2"}}, root.Children[0].Attrs)
	s.NotNil(root.Find("C"))
	s.Nil(root.Find("B/C"))
}

func (s *DocumentSuite) TestNamespacePrefixesArePreserved() {
	raw := `<Root xmlns="urn:d" xmlns:p="urn:p"><p:Item p:id="1" plain="2" xml:lang="ja"/><Other/></Root>`
	root, err := ParseDocument([]byte(raw))
	s.Require().NoError(err)

	s.Equal("Root", root.Name)
	s.Equal([]Attr{{Name: "xmlns", Value: "urn:d"}, {Name: "xmlns:p", Value: "urn:p"}}, root.Attrs)
	s.Require().Len(root.Children, 2)
	item := root.Children[0]
	s.Equal("p:Item", item.Name)
	s.Equal([]Attr{{Name: "p:id", Value: "1"}, {Name: "plain", Value: "2"}, {Name: "xml:lang", Value: "ja"}}, item.Attrs)
	s.Equal("Other", root.Children[1].Name)

	expected := "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n" +
		"<Root xmlns=\"urn:d\" xmlns:p=\"urn:p\">\n" +
		"\t<p:Item p:id=\"1\" plain=\"2\" xml:lang=\"ja\"/>\n" +
		"\t<Other/>\n" +
		"</Root>\n"
	s.Equal(expected, string(MarshalDocument(root)))
}

func (s *DocumentSuite) TestParseEmptyDocumentFails() {
	_, err := ParseDocument([]byte(`<?xml version="1.0"?>`))
	s.Error(err)
}

func (s *DocumentSuite) TestMarshalNestedIndentation() {
	root := &Node{Name: "A", Children: []*Node{
		{Name: "B", Children: []*Node{NewNode("C")}},
	}}
	expected := "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n" +
		"<A>\n" +
		"\t<B>\n" +
		"\t\t<C/>\n" +
		"\t</B>\n" +
		"</A>\n"
	s.Equal(expected, string(MarshalDocument(root)))
}

func (s *DocumentSuite) TestMarshalHasNoCarriageReturns() {
	out := MarshalDocument(NewNode("A", "v", "x\r\ny"))
	s.NotContains(string(out), "\r")
}

type PlayerListFileSuite struct {
	suite.Suite
	file *PlayerListFile
}

func TestPlayerListFileSuite(t *testing.T) {
	suite.Run(t, new(PlayerListFileSuite))
}

func (s *PlayerListFileSuite) SetupTest() {
	s.file = NewPlayerListFile(s.T().TempDir(), "emma")
}

func (s *PlayerListFileSuite) TestLoadCreatesDefault() {
	doc, err := s.file.Load()
	s.Require().NoError(err)
	s.Empty(doc.Players)
	s.Nil(doc.Trial)
	s.Equal(0, doc.LastSelect)
	s.FileExists(s.file.Path())
}

func (s *PlayerListFileSuite) TestSaveFormat() {
	doc, err := s.file.Load()
	s.Require().NoError(err)
	doc.LastSelect = 2
	doc.Players = []XMLPlayer{{Number: 2, Token: "tok-b"}, {Number: 1, Token: "tok-a"}}
	doc.Trial = &XMLTrial{ID: "dev", Token: "devtok", Code: "1234"}
	s.Require().NoError(s.file.Save(doc))

	raw, err := s.file.store.ReadRaw()
	s.Require().NoError(err)
	expected := "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n" +
		"<DragonQuestX>\n" +
		"\t<PlayerList Version=\"0.9.0\" LastSelect=\"2\">\n" +
		"\t\t<Player Number=\"2\" Token=\"tok-b\"/>\n" +
		"\t\t<Player Number=\"1\" Token=\"tok-a\"/>\n" +
		"\t\t<TrialInfo ID=\"dev\" Token=\"devtok\" Code=\"1234\"/>\n" +
		"\t</PlayerList>\n" +
		"</DragonQuestX>\n"
	s.Equal(expected, string(raw))
}

func (s *PlayerListFileSuite) TestRoundTrip() {
	doc, err := s.file.Load()
	s.Require().NoError(err)
	doc.Players = []XMLPlayer{{Number: 3, Token: "tok-c"}}
	s.Require().NoError(s.file.Save(doc))

	reloaded, err := s.file.Load()
	s.Require().NoError(err)
	s.Equal([]XMLPlayer{{Number: 3, Token: "tok-c"}}, reloaded.Players)
	s.Equal([]string{"tok-c"}, reloaded.Tokens())

	p, ok := reloaded.Player("tok-c")
	s.True(ok)
	s.Equal(3, p.Number)
}

func (s *PlayerListFileSuite) TestUnknownAttributesSurvive() {
	raw := `<?xml version="1.0" encoding="UTF-8"?>
<DragonQuestX>
	<PlayerList Version="1.2.3" LastSelect="1" Extra="yes">
		<Player Number="1" Token="tok-a"/>
	</PlayerList>
</DragonQuestX>
`
	s.Require().NoError(s.file.store.WriteRaw([]byte(raw)))

	doc, err := s.file.Load()
	s.Require().NoError(err)
	s.Require().NoError(s.file.Save(doc))

	out, err := s.file.store.ReadRaw()
	s.Require().NoError(err)
	s.Equal(raw, string(out))
}

func (s *PlayerListFileSuite) TestMissingPlayerListIsInvalid() {
	raw := `<?xml version="1.0" encoding="UTF-8"?><DragonQuestX/>`
	s.Require().NoError(s.file.store.WriteRaw([]byte(raw)))

	_, err := s.file.Load()
	var invalid *model.InvalidConfigError
	s.Require().ErrorAs(err, &invalid)
	s.Equal(raw, invalid.Contents)
}

func (s *PlayerListFileSuite) TestPlayerWithoutNumberIsInvalid() {
	raw := `<DragonQuestX><PlayerList><Player Token="x"/></PlayerList></DragonQuestX>`
	s.Require().NoError(s.file.store.WriteRaw([]byte(raw)))

	_, err := s.file.Load()
	s.ErrorIs(err, model.ErrInvalidConfig)
}

func (s *PlayerListFileSuite) TestDuplicatePlayersAreInvalid() {
	cases := map[string]string{
		"token":  `<DragonQuestX><PlayerList><Player Number="1" Token="x"/><Player Number="2" Token="x"/></PlayerList></DragonQuestX>`,
		"number": `<DragonQuestX><PlayerList><Player Number="1" Token="x"/><Player Number="1" Token="y"/></PlayerList></DragonQuestX>`,
	}
	for name, raw := range cases {
		s.Run(name, func() {
			s.Require().NoError(s.file.store.WriteRaw([]byte(raw)))

			_, err := s.file.Load()
			var invalid *model.InvalidConfigError
			s.Require().ErrorAs(err, &invalid)
			s.Contains(err.Error(), "duplicate")
		})
	}
}

func (s *PlayerListFileSuite) TestNewPlayerListXMLSavesDefaults() {
	doc := NewPlayerListXML()
	doc.Players = []XMLPlayer{{Number: 1, Token: "t"}}
	s.Require().NoError(s.file.Save(doc))

	reloaded, err := s.file.Load()
	s.Require().NoError(err)
	s.Equal(doc.Players, reloaded.Players)
}

type KnownFilesSuite struct {
	suite.Suite
}

func TestKnownFilesSuite(t *testing.T) {
	suite.Run(t, new(KnownFilesSuite))
}

func (s *KnownFilesSuite) TestLookupByObfuscatedName() {
	cases := map[string]string{
		"FbrBrpgbkOhwj!ouc":           "KeyConfigFile.xml",
		"cxjYxsgheGzie!iyx":           "dqxPlayerList.xml",
		"NeaRxpzuwPlieoha!oub]#!xui":  "PadButtonCaption.win32.xml",
		"YzjadjylzqvBmsvub!zni]]!vnh": "EnvironmentOption.win32.xml",
	}
	for obfuscated, plain := range cases {
		k, ok := Lookup(obfuscated)
		s.Require().True(ok, obfuscated)
		s.Equal(plain, k.Name)
	}

	_, ok := Lookup("nothing")
	s.False(ok)
}

func (s *KnownFilesSuite) TestOnlyPlayerListIsUserKeyed() {
	for _, k := range KnownFiles {
		s.Equal(k.Name == PlayerListName, k.UserKeyed, k.Name)
	}
}

func (s *KnownFilesSuite) TestLookupName() {
	k, ok := LookupName("PadButtonCaption.win32.xml")
	s.Require().True(ok)
	s.Equal(0x1a, k.Seed)
}

func (s *KnownFilesSuite) TestKey() {
	fixed, _ := LookupName("KeyConfigFile.xml")
	s.Equal([]byte{codec.FixedKey}, fixed.Key("emma"))

	list, _ := LookupName(PlayerListName)
	want := codec.UsernameKey("emma")
	s.Equal(want[:], list.Key("emma"))
}
