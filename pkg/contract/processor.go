package contract

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// PaymentGasLimit is the gas ceiling for makePaymentWithPermit.
const PaymentGasLimit = 300_000

// ProcessorMetaData contains the ABI of the payment processor.
var ProcessorMetaData = &bind.MetaData{
	ABI: "[{\"inputs\":[],\"name\":\"getApprovalAmount\",\"outputs\":[{\"internalType\":\"uint256\",\"name\":\"\",\"type\":\"uint256\"}],\"stateMutability\":\"pure\",\"type\":\"function\"},{\"inputs\":[],\"name\":\"getVersion\",\"outputs\":[{\"internalType\":\"string\",\"name\":\"\",\"type\":\"string\"}],\"stateMutability\":\"pure\",\"type\":\"function\"},{\"inputs\":[{\"internalType\":\"uint256\",\"name\":\"paymentAmount\",\"type\":\"uint256\"},{\"internalType\":\"bytes\",\"name\":\"permitData\",\"type\":\"bytes\"}],\"name\":\"makePaymentWithPermit\",\"outputs\":[],\"stateMutability\":\"nonpayable\",\"type\":\"function\"}]",
}

// Processor is a Go binding around the payment processor contract.
type Processor struct {
	ProcessorCaller     // Read-only binding to the contract
	ProcessorTransactor // Write-only binding to the contract
}

// ProcessorCaller is a read-only Go binding around the payment processor.
type ProcessorCaller struct {
	contract *bind.BoundContract
}

// ProcessorTransactor is a write-only Go binding around the payment processor.
type ProcessorTransactor struct {
	contract *bind.BoundContract
}

// NewProcessor creates a new instance of Processor, bound to a specific deployed contract.
func NewProcessor(address common.Address, backend bind.ContractBackend) (*Processor, error) {
	contract, err := bindProcessor(address, backend, backend, backend)
	if err != nil {
		return nil, err
	}
	return &Processor{ProcessorCaller: ProcessorCaller{contract: contract}, ProcessorTransactor: ProcessorTransactor{contract: contract}}, nil
}

// NewProcessorCaller creates a new read-only instance of Processor, bound to a specific deployed contract.
func NewProcessorCaller(address common.Address, caller bind.ContractCaller) (*ProcessorCaller, error) {
	contract, err := bindProcessor(address, caller, nil, nil)
	if err != nil {
		return nil, err
	}
	return &ProcessorCaller{contract: contract}, nil
}

func bindProcessor(address common.Address, caller bind.ContractCaller, transactor bind.ContractTransactor, filterer bind.ContractFilterer) (*bind.BoundContract, error) {
	parsed, err := abi.JSON(strings.NewReader(ProcessorMetaData.ABI))
	if err != nil {
		return nil, err
	}
	return bind.NewBoundContract(address, parsed, caller, transactor, filterer), nil
}

// GetApprovalAmount is a free data retrieval call binding the contract method getApprovalAmount.
//
// Solidity: function getApprovalAmount() pure returns(uint256)
func (_Processor *ProcessorCaller) GetApprovalAmount(opts *bind.CallOpts) (*big.Int, error) {
	var out []interface{}
	err := _Processor.contract.Call(opts, &out, "getApprovalAmount")

	if err != nil {
		return *new(*big.Int), err
	}

	out0 := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)

	return out0, err
}

// GetVersion is a free data retrieval call binding the contract method getVersion.
//
// Solidity: function getVersion() pure returns(string)
func (_Processor *ProcessorCaller) GetVersion(opts *bind.CallOpts) (string, error) {
	var out []interface{}
	err := _Processor.contract.Call(opts, &out, "getVersion")

	if err != nil {
		return *new(string), err
	}

	out0 := *abi.ConvertType(out[0], new(string)).(*string)

	return out0, err
}

// MakePaymentWithPermit is a paid mutator transaction binding the contract method makePaymentWithPermit.
//
// Solidity: function makePaymentWithPermit(uint256 paymentAmount, bytes permitData) returns()
func (_Processor *ProcessorTransactor) MakePaymentWithPermit(opts *bind.TransactOpts, paymentAmount *big.Int, permitData []byte) (*types.Transaction, error) {
	return _Processor.contract.Transact(opts, "makePaymentWithPermit", paymentAmount, permitData)
}
