package bybit

// envelope is the common Bybit V5 response wrapper.
type envelope struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
}

type klineResponse struct {
	envelope
	Result struct {
		Symbol string     `json:"symbol"`
		List   [][]string `json:"list"` // [startTime, open, high, low, close, volume, turnover], newest first
	} `json:"result"`
}

type tickerResponse struct {
	envelope
	Result struct {
		List []struct {
			Symbol    string `json:"symbol"`
			LastPrice string `json:"lastPrice"`
			MarkPrice string `json:"markPrice"`
		} `json:"list"`
	} `json:"result"`
}

type walletBalanceResponse struct {
	envelope
	Result struct {
		List []struct {
			AccountType            string `json:"accountType"`
			TotalAvailableBalance  string `json:"totalAvailableBalance"`
			TotalWalletBalance     string `json:"totalWalletBalance"`
			TotalPerpUPL           string `json:"totalPerpUPL"`
			TotalMarginBalanceCoin string `json:"totalMarginBalance"`
		} `json:"list"`
	} `json:"result"`
}

type positionListResponse struct {
	envelope
	Result struct {
		List []struct {
			Symbol   string `json:"symbol"`
			Side     string `json:"side"` // Buy | Sell | None
			Size     string `json:"size"`
			AvgPrice string `json:"avgPrice"`
		} `json:"list"`
	} `json:"result"`
}

type orderCreateResponse struct {
	envelope
	Result struct {
		OrderID     string `json:"orderId"`
		OrderLinkID string `json:"orderLinkId"`
	} `json:"result"`
}
