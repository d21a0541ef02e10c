package coc

// Success responses are bound strictly: every property the API sends must be
// known to the model. Error bodies are bound leniently in bindClientError.

func bindClan(v any, path string) (Clan, error) {
	o, err := newObject("Clan", path, v)
	if err != nil {
		return Clan{}, err
	}
	c := Clan{
		Tag:              o.String("tag"),
		Name:             o.String("name"),
		Type:             o.String("type"),
		Description:      o.OptString("description"),
		Location:         optField(o, "location", bindLocation),
		BadgeURLs:        field(o, "badgeUrls", bindBadgeURLs),
		ClanLevel:        o.Int("clanLevel"),
		ClanPoints:       o.Int("clanPoints"),
		ClanVersusPoints: o.Int("clanVersusPoints"),
		RequiredTrophies: o.Int("requiredTrophies"),
		WarFrequency:     o.String("warFrequency"),
		WarWinStreak:     o.Int("warWinStreak"),
		WarWins:          o.Int("warWins"),
		WarTies:          o.Int("warTies"),
		WarLosses:        o.Int("warLosses"),
		IsWarLogPublic:   o.Bool("isWarLogPublic"),
		WarLeague:        field(o, "warLeague", bindWarLeague),
		Members:          o.Int("members"),
		Labels:           list(o, "labels", bindLabel),
		MemberList:       optList(o, "memberList", bindClanMember),
	}
	return c, o.Done(true)
}

func bindClanMember(v any, path string) (ClanMember, error) {
	o, err := newObject("ClanMember", path, v)
	if err != nil {
		return ClanMember{}, err
	}
	m := ClanMember{
		Tag:               o.String("tag"),
		Name:              o.String("name"),
		Role:              o.String("role"),
		ExpLevel:          o.Int("expLevel"),
		League:            field(o, "league", bindLeague),
		Trophies:          o.Int("trophies"),
		VersusTrophies:    o.Int("versusTrophies"),
		ClanRank:          o.Int("clanRank"),
		PreviousClanRank:  o.Int("previousClanRank"),
		Donations:         o.Int("donations"),
		DonationsReceived: o.Int("donationsReceived"),
	}
	return m, o.Done(true)
}

func bindLeague(v any, path string) (League, error) {
	o, err := newObject("League", path, v)
	if err != nil {
		return League{}, err
	}
	l := League{
		ID:       o.Int("id"),
		Name:     o.String("name"),
		IconURLs: o.StringMap("iconUrls"),
	}
	return l, o.Done(true)
}

func bindLabel(v any, path string) (Label, error) {
	o, err := newObject("Label", path, v)
	if err != nil {
		return Label{}, err
	}
	l := Label{
		ID:       o.Int("id"),
		Name:     o.String("name"),
		IconURLs: o.StringMap("iconUrls"),
	}
	return l, o.Done(true)
}

func bindWarLeague(v any, path string) (WarLeague, error) {
	o, err := newObject("WarLeague", path, v)
	if err != nil {
		return WarLeague{}, err
	}
	l := WarLeague{
		ID:   o.Int("id"),
		Name: o.String("name"),
	}
	return l, o.Done(true)
}

func bindBadgeURLs(v any, path string) (BadgeURLs, error) {
	o, err := newObject("BadgeUrls", path, v)
	if err != nil {
		return BadgeURLs{}, err
	}
	b := BadgeURLs{
		Small:  o.String("small"),
		Medium: o.String("medium"),
		Large:  o.String("large"),
	}
	return b, o.Done(true)
}

func bindLocation(v any, path string) (Location, error) {
	o, err := newObject("Location", path, v)
	if err != nil {
		return Location{}, err
	}
	l := Location{
		ID:            o.Int("id"),
		Name:          o.String("name"),
		IsCountry:     o.Bool("isCountry"),
		CountryCode:   o.OptString("countryCode"),
		LocalizedName: o.OptString("localizedName"),
	}
	return l, o.Done(true)
}

func bindCurrentWar(v any, path string) (CurrentWar, error) {
	o, err := newObject("CurrentWar", path, v)
	if err != nil {
		return CurrentWar{}, err
	}
	w := CurrentWar{
		State:                o.String("state"),
		TeamSize:             o.Int("teamSize"),
		AttacksPerMember:     o.OptInt("attacksPerMember"),
		PreparationStartTime: o.String("preparationStartTime"),
		StartTime:            o.String("startTime"),
		EndTime:              o.String("endTime"),
		Clan:                 field(o, "clan", bindCurrentWarClan),
		Opponent:             field(o, "opponent", bindCurrentWarClan),
	}
	return w, o.Done(true)
}

func bindCurrentWarClan(v any, path string) (CurrentWarClan, error) {
	o, err := newObject("CurrentWarClan", path, v)
	if err != nil {
		return CurrentWarClan{}, err
	}
	c := CurrentWarClan{
		Tag:                   o.String("tag"),
		Name:                  o.String("name"),
		BadgeURLs:             field(o, "badgeUrls", bindBadgeURLs),
		ClanLevel:             o.Int("clanLevel"),
		Attacks:               o.Int("attacks"),
		Stars:                 o.Int("stars"),
		DestructionPercentage: o.Float("destructionPercentage"),
		ExpEarned:             o.OptInt("expEarned"),
		Members:               list(o, "members", bindCurrentWarMember),
	}
	return c, o.Done(true)
}

func bindCurrentWarMember(v any, path string) (CurrentWarMember, error) {
	o, err := newObject("CurrentWarMember", path, v)
	if err != nil {
		return CurrentWarMember{}, err
	}
	m := CurrentWarMember{
		Tag:                o.String("tag"),
		Name:               o.String("name"),
		TownhallLevel:      o.Int("townhallLevel"),
		MapPosition:        o.Int("mapPosition"),
		Attacks:            optList(o, "attacks", bindWarAttack),
		OpponentAttacks:    o.Int("opponentAttacks"),
		BestOpponentAttack: optField(o, "bestOpponentAttack", bindWarAttack),
	}
	return m, o.Done(true)
}

func bindWarAttack(v any, path string) (WarAttack, error) {
	o, err := newObject("WarAttack", path, v)
	if err != nil {
		return WarAttack{}, err
	}
	a := WarAttack{
		AttackerTag:           o.String("attackerTag"),
		DefenderTag:           o.String("defenderTag"),
		Stars:                 o.Int("stars"),
		DestructionPercentage: o.Int("destructionPercentage"),
		Order:                 o.Int("order"),
		Duration:              o.OptInt("duration"),
	}
	return a, o.Done(true)
}

func bindWarLog(v any, path string) (WarLog, error) {
	o, err := newObject("WarLog", path, v)
	if err != nil {
		return WarLog{}, err
	}
	w := WarLog{
		Result:           o.OptString("result"),
		EndTime:          o.String("endTime"),
		TeamSize:         o.Int("teamSize"),
		AttacksPerMember: o.OptInt("attacksPerMember"),
		Clan:             field(o, "clan", bindWarLogClan),
		Opponent:         field(o, "opponent", bindWarLogClan),
	}
	return w, o.Done(true)
}

func bindWarLogClan(v any, path string) (WarLogClan, error) {
	o, err := newObject("WarLogClan", path, v)
	if err != nil {
		return WarLogClan{}, err
	}
	c := WarLogClan{
		Tag:                   o.String("tag"),
		Name:                  o.String("name"),
		BadgeURLs:             field(o, "badgeUrls", bindBadgeURLs),
		ClanLevel:             o.Int("clanLevel"),
		Attacks:               o.OptInt("attacks"),
		Stars:                 o.Int("stars"),
		DestructionPercentage: o.Float("destructionPercentage"),
		ExpEarned:             o.OptInt("expEarned"),
	}
	return c, o.Done(true)
}

func bindPaging(v any, path string) (Paging, error) {
	o, err := newObject("Paging", path, v)
	if err != nil {
		return Paging{}, err
	}
	p := Paging{
		Cursors: field(o, "cursors", bindCursors),
	}
	return p, o.Done(true)
}

func bindCursors(v any, path string) (Cursors, error) {
	o, err := newObject("Cursors", path, v)
	if err != nil {
		return Cursors{}, err
	}
	c := Cursors{
		After:  o.OptString("after"),
		Before: o.OptString("before"),
	}
	return c, o.Done(true)
}

// paginatorBinder returns a binder for a page of items bound with item.
func paginatorBinder[T any](model string, item bindFunc[T]) bindFunc[*Paginator[T]] {
	return func(v any, path string) (*Paginator[T], error) {
		o, err := newObject(model, path, v)
		if err != nil {
			return nil, err
		}
		p := &Paginator[T]{
			Items:  list(o, "items", item),
			Paging: field(o, "paging", bindPaging),
		}
		if err := o.Done(true); err != nil {
			return nil, err
		}
		return p, nil
	}
}

var (
	bindClanPage     = paginatorBinder("ClanList", bindClan)
	bindLocationPage = paginatorBinder("LocationList", bindLocation)
	bindWarLogPage   = paginatorBinder("WarLogList", bindWarLog)
)

// bindClientError binds an API error body. Properties other than reason and
// message are ignored.
func bindClientError(v any, path string) (ClientError, error) {
	o, err := newObject("ClientError", path, v)
	if err != nil {
		return ClientError{}, err
	}
	e := ClientError{
		Reason:  o.String("reason"),
		Message: o.OptString("message"),
	}
	return e, o.Done(false)
}

// DecodeClan decodes a clan document.
func DecodeClan(data []byte) (*Clan, error) {
	c, err := decodeDocument("Clan", data, bindClan)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// DecodeClanPage decodes a page of clan search results.
func DecodeClanPage(data []byte) (*Paginator[Clan], error) {
	return decodeDocument("ClanList", data, bindClanPage)
}

// DecodeLocationPage decodes a page of locations.
func DecodeLocationPage(data []byte) (*Paginator[Location], error) {
	return decodeDocument("LocationList", data, bindLocationPage)
}

// DecodeWarLogPage decodes a page of a clan's war log.
func DecodeWarLogPage(data []byte) (*Paginator[WarLog], error) {
	return decodeDocument("WarLogList", data, bindWarLogPage)
}

// bindNotInWar binds the reduced document sent for a clan that is not in a
// war. Only the state property is allowed.
func bindNotInWar(v any, path string) (*CurrentWar, error) {
	o, err := newObject("CurrentWar", path, v)
	if err != nil {
		return nil, err
	}
	o.String("state")
	return nil, o.Done(true)
}

// DecodeCurrentWar decodes a current war document. It returns nil without
// an error when the clan is not in a war, since the API then omits most of
// the war properties.
func DecodeCurrentWar(data []byte) (*CurrentWar, error) {
	w, err := decodeDocument("CurrentWar", data, func(v any, path string) (*CurrentWar, error) {
		if fields, ok := v.(map[string]any); ok && fields["state"] == WarStateNotInWar {
			return bindNotInWar(v, path)
		}
		w, err := bindCurrentWar(v, path)
		if err != nil {
			return nil, err
		}
		return &w, nil
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// DecodeClientError decodes an API error body.
func DecodeClientError(data []byte) (*ClientError, error) {
	e, err := decodeDocument("ClientError", data, bindClientError)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
