package checkoutevents

const (
	TopicName             = "checkout"
	checkoutStartedName   = TopicName + ".started"
	checkoutCompletedName = TopicName + ".completed"
	checkoutCancelledName = TopicName + ".cancelled"
)

type CheckoutStarted struct {
	OrderUUID  string
	CheckoutID string
	Outcome    string
}

func (e CheckoutStarted) GetEventTypeName() string {
	return checkoutStartedName
}

func (e CheckoutStarted) GetAggregateName() string {
	return e.OrderUUID
}

type CheckoutCompleted struct {
	OrderUUID string
	PaymentID string
}

func (e CheckoutCompleted) GetEventTypeName() string {
	return checkoutCompletedName
}

func (e CheckoutCompleted) GetAggregateName() string {
	return e.OrderUUID
}

type CheckoutCancelled struct {
	OrderUUID  string
	CheckoutID string
}

func (e CheckoutCancelled) GetEventTypeName() string {
	return checkoutCancelledName
}

func (e CheckoutCancelled) GetAggregateName() string {
	return e.OrderUUID
}
