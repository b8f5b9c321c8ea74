package pipeline

import "strings"

const DefaultSubtitle = "Halloween fun for all ages"

var subtitleRules = []Rule{
	rule(`witch`, "Witchy trio casts spooky spells"),
	rule(`white house`, "Classic haunt with friendly ghosts"),
	rule(`monster`, "Cute monsters welcome all ages"),
	rule(`rizzler`, "Spooky but sweet treats await"),
	rule(`spider|web`, "Friendly webs and cozy cottage"),
	rule(`sweet|spooky`, "Sweet treats with spooky twists"),
	rule(`sandsnake|snake`, "Miami sandsnake guards candy"),
	rule(`blues|boooo`, "Cool blue spirits and boo vibes"),
	rule(`candy|critter`, "Candy paradise with cute critters"),
	rule(`scary`, "Not too scary, perfect for kids"),
	rule(`cabin|woods`, "Mysterious cabin lights the way"),
	rule(`graveyard|tombstone|cemetery|crypt`, "Fog and friendly frights await"),
	rule(`pumpkin`, "Glowing jack-o'-lantern smiles"),
}

func MakeSubtitle(title string) string {
	return firstMatch(subtitleRules, strings.ToLower(strings.TrimSpace(title)), DefaultSubtitle)
}
