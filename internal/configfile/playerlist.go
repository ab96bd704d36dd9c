package configfile

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/mcoot/galapa/internal/codec"
)

const (
	PlayerListName = "dqxPlayerList.xml"
	PlayerListSeed = 0x11

	playerListPath = "PlayerList"
)

// DefaultPlayerList is written when the game has not created the roster yet
const DefaultPlayerList = `<?xml version="1.0" encoding="UTF-8"?>
<DragonQuestX>
    <PlayerList Version="0.9.0" LastSelect="0">
    </PlayerList>
</DragonQuestX>`

// XMLPlayer is a <Player> entry of the official roster
type XMLPlayer struct {
	Number int
	Token  string
}

// XMLTrial is the <TrialInfo> entry for the easy-play account
type XMLTrial struct {
	ID    string
	Token string
	Code  string
}

// PlayerListXML is the typed contents of dqxPlayerList.xml. Attributes on
// PlayerList other than LastSelect are carried through unchanged.
type PlayerListXML struct {
	LastSelect int
	Players    []XMLPlayer
	Trial      *XMLTrial

	root *Node
	list *Node
}

// Player returns the entry with the given token
func (p *PlayerListXML) Player(token string) (XMLPlayer, bool) {
	for _, pl := range p.Players {
		if pl.Token == token {
			return pl, true
		}
	}
	return XMLPlayer{}, false
}

// Tokens returns the player tokens in document order
func (p *PlayerListXML) Tokens() []string {
	tokens := make([]string, 0, len(p.Players))
	for _, pl := range p.Players {
		tokens = append(tokens, pl.Token)
	}
	return tokens
}

// PlayerListFile reads and writes the official roster
type PlayerListFile struct {
	store *Store
}

// NewPlayerListFile opens the roster in saveDir, encoded with the key
// derived from username
func NewPlayerListFile(saveDir, username string) *PlayerListFile {
	return &PlayerListFile{
		store: New(saveDir, PlayerListName, PlayerListSeed, codec.Username(username), DefaultPlayerList),
	}
}

// Path returns the obfuscated location of the roster
func (f *PlayerListFile) Path() string {
	return f.store.Path()
}

// Load reads the roster, creating the default one if it is missing
func (f *PlayerListFile) Load() (*PlayerListXML, error) {
	data, err := f.store.ReadRaw()
	if err != nil {
		return nil, err
	}

	root, err := ParseDocument(data)
	if err != nil {
		return nil, f.store.invalid(data, err)
	}
	doc, err := decodePlayerList(root)
	if err != nil {
		return nil, f.store.invalid(data, err)
	}
	return doc, nil
}

// Save writes the roster back, keeping anything in the original document
// that is not part of the typed record
func (f *PlayerListFile) Save(doc *PlayerListXML) error {
	return f.store.Save(encodePlayerList(doc))
}

func decodePlayerList(root *Node) (*PlayerListXML, error) {
	if root.Name != "DragonQuestX" {
		return nil, fmt.Errorf("unexpected root element %q", root.Name)
	}
	list := root.Find(playerListPath)
	if list == nil {
		return nil, errors.New("missing DragonQuestX/PlayerList")
	}

	doc := &PlayerListXML{root: root, list: list}
	if raw, ok := list.Get("LastSelect"); ok && raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("LastSelect %q: %w", raw, err)
		}
		doc.LastSelect = n
	}

	tokens := make(map[string]bool)
	numbers := make(map[int]bool)
	for _, child := range list.Children {
		switch child.Name {
		case "Player":
			p, err := decodePlayer(child)
			if err != nil {
				return nil, err
			}
			if tokens[p.Token] {
				return nil, fmt.Errorf("duplicate Player Token %q", p.Token)
			}
			if numbers[p.Number] {
				return nil, fmt.Errorf("duplicate Player Number %d", p.Number)
			}
			tokens[p.Token] = true
			numbers[p.Number] = true
			doc.Players = append(doc.Players, p)
		case "TrialInfo":
			t, err := decodeTrial(child)
			if err != nil {
				return nil, err
			}
			doc.Trial = &t
		}
	}
	return doc, nil
}

func decodePlayer(n *Node) (XMLPlayer, error) {
	raw, ok := n.Get("Number")
	if !ok {
		return XMLPlayer{}, errors.New("Player without Number")
	}
	number, err := strconv.Atoi(raw)
	if err != nil {
		return XMLPlayer{}, fmt.Errorf("Player Number %q: %w", raw, err)
	}
	token, ok := n.Get("Token")
	if !ok {
		return XMLPlayer{}, errors.New("Player without Token")
	}
	return XMLPlayer{Number: number, Token: token}, nil
}

func decodeTrial(n *Node) (XMLTrial, error) {
	var t XMLTrial
	var ok bool
	if t.ID, ok = n.Get("ID"); !ok {
		return t, errors.New("TrialInfo without ID")
	}
	if t.Token, ok = n.Get("Token"); !ok {
		return t, errors.New("TrialInfo without Token")
	}
	if t.Code, ok = n.Get("Code"); !ok {
		return t, errors.New("TrialInfo without Code")
	}
	return t, nil
}

func encodePlayerList(doc *PlayerListXML) *Node {
	root, list := doc.root, doc.list
	if root == nil {
		list = NewNode(playerListPath, "Version", "0.9.0", "LastSelect", "0")
		root = &Node{Name: "DragonQuestX", Children: []*Node{list}}
	}
	list.Set("LastSelect", strconv.Itoa(doc.LastSelect))

	// Players come first and the trial entry last, as the client writes them.
	var others []*Node
	for _, child := range list.Children {
		if child.Name != "Player" && child.Name != "TrialInfo" {
			others = append(others, child)
		}
	}
	children := make([]*Node, 0, len(doc.Players)+len(others)+1)
	for _, p := range doc.Players {
		children = append(children, NewNode("Player", "Number", strconv.Itoa(p.Number), "Token", p.Token))
	}
	children = append(children, others...)
	if doc.Trial != nil {
		children = append(children, NewNode("TrialInfo", "ID", doc.Trial.ID, "Token", doc.Trial.Token, "Code", doc.Trial.Code))
	}
	list.Children = children

	return root
}

// NewPlayerListXML returns an empty roster with the default attributes
func NewPlayerListXML() *PlayerListXML {
	root, err := ParseDocument([]byte(DefaultPlayerList))
	if err != nil {
		panic(fmt.Sprintf("default player list: %v", err))
	}
	doc, err := decodePlayerList(root)
	if err != nil {
		panic(fmt.Sprintf("default player list: %v", err))
	}
	return doc
}
