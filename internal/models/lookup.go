package models

// DayOption is one entry of the stay-length table served at GET /api/days
type DayOption struct {
	ID   int `json:"id"`
	Days int `json:"Days"`
}

// FeeOption is one entry of the fee tables served at GET /api/parking-fee
// and GET /api/parking-fee-without-hours
type FeeOption struct {
	ID  int    `json:"id"`
	Fee string `json:"Fee"`
}

// Days lists the selectable stay lengths for flows without a fee.
var Days = []DayOption{
	{ID: 1, Days: 1}, {ID: 2, Days: 2}, {ID: 3, Days: 3}, {ID: 4, Days: 4}, {ID: 5, Days: 5},
	{ID: 6, Days: 6}, {ID: 7, Days: 7}, {ID: 8, Days: 8}, {ID: 9, Days: 9}, {ID: 10, Days: 10},
}

// ParkingFees lists the duration-bound fees offered by MandatoryDonationFlow.
var ParkingFees = []FeeOption{
	{ID: 1, Fee: "UP TO 1 HR - £1.00"},
	{ID: 2, Fee: "UP TO 2 HR - £2.00"},
	{ID: 3, Fee: "UP TO 3 HR - £3.00"},
	{ID: 4, Fee: "UP TO 4 HR - £4.00"},
	{ID: 5, Fee: "UP TO 5 HR - £5.00"},
	{ID: 6, Fee: "UP TO 5 HR - £6.00"},
	{ID: 7, Fee: "UP TO 5 HR - £7.00"},
	{ID: 8, Fee: "UP TO 5 HR - £8.00"},
	{ID: 9, Fee: "UP TO 5 HR - £9.00"},
	{ID: 10, Fee: "UP TO 5 HR - £10.00"},
}

// ParkingFeesWithoutHours lists the plain amounts offered by the optional
// donation and paid parking flows.
var ParkingFeesWithoutHours = []FeeOption{
	{ID: 1, Fee: "£1.00"}, {ID: 2, Fee: "£2.00"}, {ID: 3, Fee: "£3.00"}, {ID: 4, Fee: "£4.00"}, {ID: 5, Fee: "£5.00"},
	{ID: 6, Fee: "£6.00"}, {ID: 7, Fee: "£7.00"}, {ID: 8, Fee: "£8.00"}, {ID: 9, Fee: "£9.00"}, {ID: 10, Fee: "£10.00"},
}
