package basketevents

const (
	TopicName             = "basket"
	basketCreatedName     = TopicName + ".created"
	basketItemAddedName   = TopicName + ".itemAdded"
	basketItemEditedName  = TopicName + ".itemEdited"
	basketItemRemovedName = TopicName + ".itemRemoved"
)

type BasketCreated struct {
	BasketUID string
}

func (e BasketCreated) GetEventTypeName() string {
	return basketCreatedName
}

func (e BasketCreated) GetAggregateName() string {
	return e.BasketUID
}

type BasketItemAdded struct {
	BasketUID string
	ItemType  string
	ItemID    int64
	Quantity  int
}

func (e BasketItemAdded) GetEventTypeName() string {
	return basketItemAddedName
}

func (e BasketItemAdded) GetAggregateName() string {
	return e.BasketUID
}

type BasketItemEdited struct {
	BasketUID string
	ItemID    int64
	Quantity  int
}

func (e BasketItemEdited) GetEventTypeName() string {
	return basketItemEditedName
}

func (e BasketItemEdited) GetAggregateName() string {
	return e.BasketUID
}

type BasketItemRemoved struct {
	BasketUID string
	ItemID    int64
}

func (e BasketItemRemoved) GetEventTypeName() string {
	return basketItemRemovedName
}

func (e BasketItemRemoved) GetAggregateName() string {
	return e.BasketUID
}
