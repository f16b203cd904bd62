package export

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ardsutil/cursor"
	"ardsutil/fixture"
	"ardsutil/models"
	"ardsutil/parser"
)

func sampleGame(t *testing.T) *models.Game {
	t.Helper()
	g := fixture.Sample("ASME", 0xCAFEBABE, "Super Mario 64 DS")
	var p parser.Parser
	game, err := p.ReadGame(cursor.FromBytes(g.Encode()), 0)
	require.NoError(t, err)
	return game
}

func TestWriteXML(t *testing.T) {
	game := sampleGame(t)

	var buf bytes.Buffer
	require.NoError(t, WriteXML(&buf, []*models.Game{game}))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`+"\n<codelist>\n"))
	assert.Contains(t, out, "\t<name>"+Creator+"</name>\n")
	assert.Contains(t, out, "\t\t<name>Super Mario 64 DS</name>\n")
	assert.Contains(t, out, "\t\t<gameid>ASME CAFEBABE</gameid>\n")
	assert.Contains(t, out, "\t\t<date>2007/06/15 13:45</date>\n")
	assert.Contains(t, out, "<codes>0209F2A8 00000001 0209F2AC 00000000</codes>")
	assert.Contains(t, out, "<allowedon>1</allowedon>")
	assert.Contains(t, out, "<note>for the brave</note>")
	assert.True(t, strings.HasSuffix(out, "</codelist>\n"))

	// cheats without a description carry no note
	assert.Equal(t, 3, strings.Count(out, "<note>"))
}

func TestWriteXML_Structure(t *testing.T) {
	game := sampleGame(t)

	var buf bytes.Buffer
	require.NoError(t, WriteXML(&buf, []*models.Game{game, game}))

	var doc struct {
		Name  string `xml:"name"`
		Games []struct {
			Name    string `xml:"name"`
			GameID  string `xml:"gameid"`
			Cheats  []struct {
				Name  string `xml:"name"`
				Codes string `xml:"codes"`
			} `xml:"cheat"`
			Folders []struct {
				Name      string `xml:"name"`
				Note      string `xml:"note"`
				AllowedOn int    `xml:"allowedon"`
				Cheats    []struct {
					Name string `xml:"name"`
				} `xml:"cheat"`
			} `xml:"folder"`
		} `xml:"game"`
	}
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, Creator, doc.Name)
	require.Len(t, doc.Games, 2)
	g := doc.Games[0]
	assert.Equal(t, "ASME CAFEBABE", g.GameID)
	require.Len(t, g.Cheats, 2)
	assert.Equal(t, "(M)", g.Cheats[0].Name)
	assert.Equal(t, "12000000 00000001", g.Cheats[0].Codes)
	require.Len(t, g.Folders, 1)
	assert.Equal(t, 1, g.Folders[0].AllowedOn)
	assert.Equal(t, "pick one", g.Folders[0].Note)
	assert.Len(t, g.Folders[0].Cheats, 2)
}

func TestWriteXML_EscapesAndNoDate(t *testing.T) {
	game := &models.Game{
		Header: models.GameHeader{ID: [4]byte{'A', 'B', 'C', 'D'}, Checksum: 1},
		Name:   "Tom & Jerry <DS>",
		Nodes: []*models.Node{
			fixture.Named(models.NewFolder(0, nil), "Empty", ""),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXML(&buf, []*models.Game{game}))
	out := buf.String()

	assert.Contains(t, out, "Tom &amp; Jerry &lt;DS&gt;")
	assert.NotContains(t, out, "<date>")
	assert.NotContains(t, out, "<allowedon>")
	assert.Contains(t, out, "<gameid>ABCD 00000001</gameid>")
}

func TestFormatLines(t *testing.T) {
	assert.Equal(t, "", FormatLines(nil))
	assert.Equal(t, "0000000A 000000FF", FormatLines([]models.Line{{Address: 10, Value: 255}}))
}

func TestWriteJSON(t *testing.T) {
	game := sampleGame(t)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, []*models.Game{game}))

	var out []GameData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 1)

	d := out[0]
	assert.Equal(t, "ASME-CAFEBABE", d.ID)
	assert.Equal(t, "ASME", d.CartID)
	assert.Equal(t, "CAFEBABE", d.Checksum)
	assert.Equal(t, "2007/06/15 13:45", d.Date)
	assert.Equal(t, 4, d.NumCodes)
	require.Len(t, d.Entries, 3)

	assert.Equal(t, "code", d.Entries[0].Kind)
	assert.Equal(t, []string{"master"}, d.Entries[0].Modifiers)
	assert.Equal(t, []string{"12000000 00000001"}, d.Entries[0].Codes)

	folder := d.Entries[1]
	assert.Equal(t, "folder", folder.Kind)
	assert.Equal(t, []string{"only-one"}, folder.Modifiers)
	require.Len(t, folder.Entries, 2)
	assert.Equal(t, "1 Life", folder.Entries[1].Name)
	assert.Len(t, folder.Entries[1].Codes, 2)
}

func TestDeduplicate(t *testing.T) {
	a := &models.Game{Offset: 1, Header: models.GameHeader{Checksum: 1}}
	b := &models.Game{Offset: 2, Header: models.GameHeader{Checksum: 1}}

	got := Deduplicate([]*models.Game{a, b, a, a})
	assert.Equal(t, []*models.Game{a, b}, got)
}
